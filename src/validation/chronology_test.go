package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cargodocs/backend/src/models"
)

func proformaBeforeInvoiceRule() DateRule {
	return DateRule{
		RuleID: "date_proforma_earliest",
		Anchor: FieldRef{DocType: "PROFORMA", FieldKey: "proforma_date", Label: "Proforma date"},
		Comparisons: []DateComparison{
			{Op: OpOnOrBefore, Other: FieldRef{DocType: "INVOICE", FieldKey: "invoice_date", Label: "Invoice date"}},
		},
		Severity: models.SeverityError,
	}
}

func violations(msgs []models.ValidationMessage, ruleID string) []models.ValidationMessage {
	var out []models.ValidationMessage
	for _, msg := range msgs {
		if msg.RuleID == ruleID {
			out = append(out, msg)
		}
	}
	return out
}

func TestDateRuleViolation(t *testing.T) {
	// Proforma dated after the invoice: the <= constraint fails.
	docs := []models.Document{
		makeDoc("doc-1", models.DocTypeProforma),
		makeDoc("doc-2", models.DocTypeInvoice),
	}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {{key: "proforma_date", value: "2024-01-05"}},
		"doc-2": {{key: "invoice_date", value: "2024-01-03"}},
	})

	msgs := proformaBeforeInvoiceRule().Evaluate(ctx)

	viol := violations(msgs, "date_proforma_earliest")
	require.Len(t, viol, 1)
	assert.Equal(t, models.SeverityError, viol[0].Severity)
	assert.Contains(t, viol[0].Message, "2024-01-05")
	assert.Contains(t, viol[0].Message, "2024-01-03")
	assert.Contains(t, viol[0].Message, "earlier than or equal to")
	require.Len(t, viol[0].Refs, 2)
	assert.Equal(t, "doc-1", viol[0].Refs[0].DocID)
	assert.Equal(t, "doc-2", viol[0].Refs[1].DocID)
}

func TestDateRuleBoundaryInclusive(t *testing.T) {
	// Equal dates satisfy <=.
	docs := []models.Document{
		makeDoc("doc-1", models.DocTypeProforma),
		makeDoc("doc-2", models.DocTypeInvoice),
	}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {{key: "proforma_date", value: "2024-01-05"}},
		"doc-2": {{key: "invoice_date", value: "2024-01-05"}},
	})

	msgs := proformaBeforeInvoiceRule().Evaluate(ctx)
	assert.Empty(t, violations(msgs, "date_proforma_earliest"))
}

func TestDateRuleOneDayOver(t *testing.T) {
	docs := []models.Document{
		makeDoc("doc-1", models.DocTypeProforma),
		makeDoc("doc-2", models.DocTypeInvoice),
	}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {{key: "proforma_date", value: "2024-01-06"}},
		"doc-2": {{key: "invoice_date", value: "2024-01-05"}},
	})

	msgs := proformaBeforeInvoiceRule().Evaluate(ctx)
	assert.Len(t, violations(msgs, "date_proforma_earliest"), 1)
}

func TestDateRuleSkipsWhenAnchorEmpty(t *testing.T) {
	// No proforma document at all: only the availability warning, never a
	// violation.
	docs := []models.Document{makeDoc("doc-2", models.DocTypeInvoice)}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-2": {{key: "invoice_date", value: "2024-01-03"}},
	})

	msgs := proformaBeforeInvoiceRule().Evaluate(ctx)

	require.Len(t, msgs, 1)
	assert.Equal(t, "date_proforma_earliest_availability", msgs[0].RuleID)
	assert.Empty(t, violations(msgs, "date_proforma_earliest"))
}

func TestDateRulePartialComparisons(t *testing.T) {
	// A missing comparison target skips that comparison only; the remaining
	// comparisons of the same rule still run.
	rule := DateRule{
		RuleID: "date_proforma_earliest",
		Anchor: FieldRef{DocType: "PROFORMA", FieldKey: "proforma_date", Label: "Proforma date"},
		Comparisons: []DateComparison{
			{Op: OpOnOrBefore, Other: FieldRef{DocType: "INVOICE", FieldKey: "invoice_date", Label: "Invoice date"}},
			{Op: OpOnOrBefore, Other: FieldRef{DocType: "BILL_OF_LADING", FieldKey: "bl_date", Label: "B/L date"}},
		},
		Severity: models.SeverityError,
	}
	docs := []models.Document{
		makeDoc("doc-1", models.DocTypeProforma),
		makeDoc("doc-3", models.DocTypeBillOfLading),
	}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {{key: "proforma_date", value: "2024-02-01"}},
		"doc-3": {{key: "bl_date", value: "2024-01-20"}},
	})

	msgs := rule.Evaluate(ctx)

	// Invoice comparison is skipped (availability only), B/L comparison fails.
	assert.Len(t, violations(msgs, "date_proforma_earliest_availability"), 1)
	assert.Len(t, violations(msgs, "date_proforma_earliest"), 1)
}

func TestDateRulePairwiseAcrossDuplicates(t *testing.T) {
	// Two invoices: each is checked against the anchor independently.
	docs := []models.Document{
		makeDoc("doc-1", models.DocTypeProforma),
		makeDoc("doc-2", models.DocTypeInvoice),
		makeDoc("doc-3", models.DocTypeInvoice),
	}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {{key: "proforma_date", value: "2024-01-10"}},
		"doc-2": {{key: "invoice_date", value: "2024-01-03"}},
		"doc-3": {{key: "invoice_date", value: "2024-01-04"}},
	})

	msgs := proformaBeforeInvoiceRule().Evaluate(ctx)
	assert.Len(t, violations(msgs, "date_proforma_earliest"), 2)
}

func TestCompareOpHolds(t *testing.T) {
	tests := []struct {
		op       CompareOp
		a, b     string
		expected bool
	}{
		{OpBefore, "2024-01-05", "2024-01-06", true},
		{OpBefore, "2024-01-05", "2024-01-05", false},
		{OpOnOrBefore, "2024-01-05", "2024-01-05", true},
		{OpAfter, "2024-01-06", "2024-01-05", true},
		{OpOnOrAfter, "2024-01-05", "2024-01-06", false},
		{OpSameDay, "2024-01-05", "2024-01-05", true},
	}
	for _, tt := range tests {
		a, ok := NormalizeDate(tt.a)
		require.True(t, ok)
		b, ok := NormalizeDate(tt.b)
		require.True(t, ok)
		assert.Equal(t, tt.expected, tt.op.Holds(a, b), "%s %s %s", tt.a, tt.op, tt.b)
	}
}
