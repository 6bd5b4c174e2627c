package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/cargodocs/backend/src/database"
	"github.com/username/cargodocs/backend/src/logger"
	"github.com/username/cargodocs/backend/src/models"
	"github.com/username/cargodocs/backend/src/validation"
)

const (
	ckValidationReport = "res_validation_report_batch_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type validationServiceImpl struct {
	engine              *validation.Engine
	confidenceThreshold float64
	reportCache         *cache.Cache
	notifier            *Notifier // optional
}

func NewValidationService(
	engine *validation.Engine,
	confidenceThreshold float64,
	reportCache *cache.Cache,
	notifier *Notifier,
) ValidationService {
	return &validationServiceImpl{
		engine:              engine,
		confidenceThreshold: confidenceThreshold,
		reportCache:         reportCache,
		notifier:            notifier,
	}
}

// ValidateBatch snapshots the batch's documents and latest ledger entries,
// runs the engine, and replaces the batch's persisted report in a single
// transaction. Re-running on an unchanged batch is idempotent.
func (s *validationServiceImpl) ValidateBatch(batchID string) (*ValidationReport, error) {
	overallStartTime := time.Now()
	runID := uuid.NewString()
	logger.L.Info("ValidateBatch START", "batchID", batchID, "runID", runID)

	batch, err := models.GetBatch(database.DB, batchID)
	if err != nil {
		return nil, err
	}

	ctx, err := s.snapshotBatch(batchID)
	if err != nil {
		return nil, err
	}

	messages, unidentified := s.engine.Run(ctx)
	for _, row := range unidentified {
		logger.L.Warn("Product row has no usable name and was excluded from matching",
			"batchID", batchID, "runID", runID, "documentID", row.Document.ID, "rowID", row.RowID)
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning report transaction for batch %s: %w", batchID, err)
	}
	defer dbTx.Rollback()

	if err := models.ReplaceBatchMessages(dbTx, batchID, messages); err != nil {
		return nil, err
	}
	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing report for batch %s: %w", batchID, err)
	}

	report := buildReport(batchID, messages)
	s.reportCache.Set(fmt.Sprintf(ckValidationReport, batchID), report, DefaultCacheExpiration)

	if report.ErrorCount == 0 && batch.Status == models.BatchStatusReady {
		if err := batch.UpdateStatus(database.DB, models.BatchStatusDone); err != nil {
			logger.L.Error("Failed to mark batch done after clean validation", "batchID", batchID, "error", err)
		} else {
			logger.L.Info("Batch marked done: no consistency errors", "batchID", batchID, "runID", runID)
		}
	}

	if report.ErrorCount > 0 && s.notifier != nil {
		s.notifier.NotifyValidationErrors(batch.Name, report)
	}

	logger.L.Info("ValidateBatch END",
		"batchID", batchID, "runID", runID,
		"messages", len(messages), "errors", report.ErrorCount, "warnings", report.WarnCount,
		"duration", time.Since(overallStartTime))
	return report, nil
}

// GetReport returns the persisted report for a batch, from cache when fresh.
func (s *validationServiceImpl) GetReport(batchID string) (*ValidationReport, error) {
	cacheKey := fmt.Sprintf(ckValidationReport, batchID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for validation report", "batchID", batchID)
		return cached.(*ValidationReport), nil
	}
	logger.L.Info("Cache miss for validation report, loading from DB", "batchID", batchID)

	if _, err := models.GetBatch(database.DB, batchID); err != nil {
		return nil, err
	}
	messages, err := models.FetchBatchMessages(database.DB, batchID)
	if err != nil {
		return nil, err
	}
	report := buildReport(batchID, messages)
	s.reportCache.Set(cacheKey, report, DefaultCacheExpiration)
	return report, nil
}

// CheckReadiness runs the review-completeness gate over the live ledger.
func (s *validationServiceImpl) CheckReadiness(batchID string) (*validation.ReadinessReport, error) {
	if _, err := models.GetBatch(database.DB, batchID); err != nil {
		return nil, err
	}
	ctx, err := s.snapshotBatch(batchID)
	if err != nil {
		return nil, err
	}
	report := validation.CheckReviewReadiness(ctx, s.confidenceThreshold)
	logger.L.Info("Readiness check complete", "batchID", batchID, "ready", report.Ready, "lacking", len(report.Lacking))
	return &report, nil
}

// InvalidateBatchCache drops the cached report, forcing a DB reload on the
// next request. Called whenever a field is re-edited.
func (s *validationServiceImpl) InvalidateBatchCache(batchID string) {
	s.reportCache.Delete(fmt.Sprintf(ckValidationReport, batchID))
	logger.L.Info("Invalidated report cache for batch", "batchID", batchID)
}

func (s *validationServiceImpl) snapshotBatch(batchID string) (*validation.Context, error) {
	documents, err := models.FetchBatchDocuments(database.DB, batchID)
	if err != nil {
		return nil, err
	}
	fields, err := models.FetchLatestFields(database.DB, batchID)
	if err != nil {
		return nil, err
	}
	return validation.NewContext(batchID, documents, fields), nil
}

func buildReport(batchID string, messages []models.ValidationMessage) *ValidationReport {
	report := &ValidationReport{BatchID: batchID, Messages: messages}
	for _, msg := range messages {
		switch msg.Severity {
		case models.SeverityError:
			report.ErrorCount++
		default:
			report.WarnCount++
		}
	}
	return report
}
