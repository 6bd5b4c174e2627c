package services

import (
	"time"

	"github.com/username/cargodocs/backend/src/logger"
	"golang.org/x/time/rate"
)

// Notifier wraps the email service with a process-wide throttle so repeated
// re-validation of the same batch cannot storm the reviewer's mailbox.
type Notifier struct {
	email   EmailService
	toEmail string
	limiter *rate.Limiter
}

// NewNotifier returns nil when no recipient is configured; callers treat a
// nil Notifier as notifications-disabled.
func NewNotifier(email EmailService, toEmail string, minInterval time.Duration) *Notifier {
	if toEmail == "" {
		logger.L.Info("Validation notifications disabled: no recipient configured.")
		return nil
	}
	if minInterval <= 0 {
		minInterval = 5 * time.Minute
	}
	return &Notifier{
		email:   email,
		toEmail: toEmail,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// NotifyValidationErrors sends a summary unless the throttle is exhausted.
// A dropped notification is logged, never an error: the report itself is
// already persisted.
func (n *Notifier) NotifyValidationErrors(batchName string, report *ValidationReport) {
	if !n.limiter.Allow() {
		logger.L.Warn("Validation notification suppressed by throttle", "batch", batchName, "errors", report.ErrorCount)
		return
	}
	if err := n.email.SendValidationSummary(n.toEmail, batchName, report); err != nil {
		logger.L.Error("Failed to send validation notification", "batch", batchName, "error", err)
	}
}
