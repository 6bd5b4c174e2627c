package services

import (
	"github.com/username/cargodocs/backend/src/models"
	"github.com/username/cargodocs/backend/src/validation"
)

// ValidationReport is what a validation run leaves behind for one batch.
type ValidationReport struct {
	BatchID    string                     `json:"batch_id"`
	Messages   []models.ValidationMessage `json:"messages"`
	ErrorCount int                        `json:"error_count"`
	WarnCount  int                        `json:"warn_count"`
}

// ValidationService drives the consistency engine: snapshot the ledger, run
// the rules, persist the report with replace semantics.
type ValidationService interface {
	ValidateBatch(batchID string) (*ValidationReport, error)
	GetReport(batchID string) (*ValidationReport, error)
	CheckReadiness(batchID string) (*validation.ReadinessReport, error)
	InvalidateBatchCache(batchID string)
}

// EmailService sends validation outcome notifications to reviewers.
type EmailService interface {
	SendValidationSummary(toEmail, batchName string, report *ValidationReport) error
}
