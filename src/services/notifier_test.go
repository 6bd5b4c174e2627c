package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cargodocs/backend/src/models"
)

func errorReport(errors int) *ValidationReport {
	report := &ValidationReport{BatchID: "batch-1", ErrorCount: errors}
	for i := 0; i < errors; i++ {
		report.Messages = append(report.Messages, models.ValidationMessage{
			RuleID:   "required_fields",
			Severity: models.SeverityError,
			Message:  "missing field",
		})
	}
	return report
}

func TestNotifierThrottlesRepeatedSends(t *testing.T) {
	mock := &MockEmailService{}
	notifier := NewNotifier(mock, "reviewer@example.com", time.Hour)
	require.NotNil(t, notifier)

	// One token in the bucket: the first send passes, immediate retries drop.
	notifier.NotifyValidationErrors("August shipment", errorReport(3))
	notifier.NotifyValidationErrors("August shipment", errorReport(3))
	notifier.NotifyValidationErrors("August shipment", errorReport(3))

	assert.Equal(t, 1, mock.SentCount)
}

func TestNotifierRefillsAfterInterval(t *testing.T) {
	mock := &MockEmailService{}
	notifier := NewNotifier(mock, "reviewer@example.com", 10*time.Millisecond)
	require.NotNil(t, notifier)

	notifier.NotifyValidationErrors("batch", errorReport(1))
	time.Sleep(25 * time.Millisecond)
	notifier.NotifyValidationErrors("batch", errorReport(1))

	assert.Equal(t, 2, mock.SentCount)
}

func TestNotifierDisabledWithoutRecipient(t *testing.T) {
	notifier := NewNotifier(&MockEmailService{}, "", time.Hour)
	assert.Nil(t, notifier)
}

func TestBuildReportCounts(t *testing.T) {
	msgs := []models.ValidationMessage{
		{RuleID: "a", Severity: models.SeverityError},
		{RuleID: "b", Severity: models.SeverityWarn},
		{RuleID: "c", Severity: models.SeverityWarn},
	}
	report := buildReport("batch-1", msgs)
	assert.Equal(t, 1, report.ErrorCount)
	assert.Equal(t, 2, report.WarnCount)
	assert.Equal(t, "batch-1", report.BatchID)
}

func TestSummaryBodyListsErrorsOnly(t *testing.T) {
	report := &ValidationReport{
		ErrorCount: 1,
		WarnCount:  1,
		Messages: []models.ValidationMessage{
			{RuleID: "contract_number", Severity: models.SeverityError, Message: "numbers differ"},
			{RuleID: "gross_weight", Severity: models.SeverityWarn, Message: "weights differ"},
		},
	}

	body := summaryBody("August shipment", report)

	assert.Contains(t, body, "August shipment")
	assert.Contains(t, body, "Errors: 1")
	assert.Contains(t, body, "[contract_number] numbers differ")
	assert.NotContains(t, body, "weights differ")
}
