package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cargodocs/backend/src/models"
)

func TestReadinessAllRequiredPresent(t *testing.T) {
	docs := []models.Document{makeDoc("doc-1", models.DocTypePackingList)}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {
			{key: "invoice_number", value: "INV-100"},
			{key: "net_weight", value: "18000"},
			{key: "gross_weight", value: "19500"},
		},
	})

	report := CheckReviewReadiness(ctx, 0.8)
	assert.True(t, report.Ready)
	assert.Empty(t, report.Lacking)
}

func TestReadinessMissingRequiredField(t *testing.T) {
	docs := []models.Document{makeDoc("doc-1", models.DocTypePackingList)}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {
			{key: "invoice_number", value: "INV-100"},
			{key: "net_weight", value: "18000"},
		},
	})

	report := CheckReviewReadiness(ctx, 0.8)

	assert.False(t, report.Ready)
	require.Len(t, report.Lacking, 1)
	assert.Equal(t, "doc-1", report.Lacking[0].DocID)
	assert.Equal(t, "gross_weight", report.Lacking[0].FieldKey)
	assert.Equal(t, "required field has no value", report.Lacking[0].Reason)
}

func TestReadinessBlankValueCountsAsMissing(t *testing.T) {
	docs := []models.Document{makeDoc("doc-1", models.DocTypePackingList)}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {
			{key: "invoice_number", value: "INV-100"},
			{key: "net_weight", value: "18000"},
			{key: "gross_weight", value: "   "},
		},
	})

	report := CheckReviewReadiness(ctx, 0.8)
	assert.False(t, report.Ready)
	require.Len(t, report.Lacking, 1)
	assert.Equal(t, "gross_weight", report.Lacking[0].FieldKey)
}

func TestReadinessLowConfidenceBlocks(t *testing.T) {
	doc := makeDoc("doc-1", models.DocTypePackingList)
	weight := "19500"
	latest := map[string]map[string]models.FilledField{
		"doc-1": {
			"invoice_number": latestField("doc-1", "invoice_number", "INV-100", 0.95),
			"net_weight":     latestField("doc-1", "net_weight", "18000", 0.91),
			"gross_weight": {
				DocumentID: "doc-1",
				FieldKey:   "gross_weight",
				Value:      &weight,
				Confidence: 0.42,
				Source:     "extraction",
				Version:    1,
				Latest:     true,
			},
		},
	}
	ctx := NewContext("batch-1", []models.Document{doc}, latest)

	report := CheckReviewReadiness(ctx, 0.8)

	assert.False(t, report.Ready)
	require.Len(t, report.Lacking, 1)
	assert.Equal(t, "gross_weight", report.Lacking[0].FieldKey)
	assert.Contains(t, report.Lacking[0].Reason, "confidence 0.42")
	assert.Contains(t, report.Lacking[0].Reason, "threshold 0.80")
}

func TestReadinessManualCorrectionPasses(t *testing.T) {
	// A reviewed field is written at full confidence, so it always clears the
	// threshold regardless of what extraction originally scored.
	doc := makeDoc("doc-1", models.DocTypePackingList)
	latest := map[string]map[string]models.FilledField{
		"doc-1": {
			"invoice_number": latestField("doc-1", "invoice_number", "INV-100", 0.95),
			"net_weight":     latestField("doc-1", "net_weight", "18000", 0.91),
			"gross_weight":   latestField("doc-1", "gross_weight", "19500", 1.0),
		},
	}
	ctx := NewContext("batch-1", []models.Document{doc}, latest)

	report := CheckReviewReadiness(ctx, 0.8)
	assert.True(t, report.Ready)
}

func latestField(docID, key, value string, confidence float64) models.FilledField {
	v := value
	return models.FilledField{
		DocumentID: docID,
		FieldKey:   key,
		Value:      &v,
		Confidence: confidence,
		Source:     "extraction",
		Version:    1,
		Latest:     true,
	}
}
