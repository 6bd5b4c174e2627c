package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cargodocs/backend/src/database"
	"github.com/username/cargodocs/backend/src/models"
)

func replaceMessages(t *testing.T, batchID string, msgs []models.ValidationMessage) {
	t.Helper()
	tx, err := database.DB.Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, models.ReplaceBatchMessages(tx, batchID, msgs))
	require.NoError(t, tx.Commit())
}

func TestReplaceBatchMessagesRoundTrip(t *testing.T) {
	batchID, docIDs := seedBatch(t, models.DocTypeInvoice, models.DocTypePackingList)
	value := "INV-1"

	msgs := []models.ValidationMessage{
		{
			RuleID:   "invoice_number_agreement",
			Severity: models.SeverityError,
			Message:  "documents disagree on Invoice number",
			Refs: []models.FieldPointer{
				{DocID: docIDs[0], FieldKey: "invoice_number", Value: &value},
				{DocID: docIDs[1], FieldKey: "invoice_number"},
			},
		},
		{
			RuleID:   "net_weight_availability",
			Severity: models.SeverityWarn,
			Message:  "no PACKING_LIST document carries Net weight",
		},
	}
	replaceMessages(t, batchID, msgs)

	stored, err := models.FetchBatchMessages(database.DB, batchID)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	// Run order survives persistence.
	assert.Equal(t, "invoice_number_agreement", stored[0].RuleID)
	assert.Equal(t, models.SeverityError, stored[0].Severity)
	require.Len(t, stored[0].Refs, 2)
	assert.Equal(t, docIDs[0], stored[0].Refs[0].DocID)
	require.NotNil(t, stored[0].Refs[0].Value)
	assert.Equal(t, "INV-1", *stored[0].Refs[0].Value)
	assert.Nil(t, stored[0].Refs[1].Value)

	assert.Equal(t, "net_weight_availability", stored[1].RuleID)
	assert.Empty(t, stored[1].Refs)
}

func TestReplaceBatchMessagesIsWholesale(t *testing.T) {
	batchID, _ := seedBatch(t, models.DocTypeInvoice)

	replaceMessages(t, batchID, []models.ValidationMessage{
		{RuleID: "required_fields", Severity: models.SeverityError, Message: "first run"},
		{RuleID: "contract_number", Severity: models.SeverityError, Message: "first run"},
	})
	replaceMessages(t, batchID, []models.ValidationMessage{
		{RuleID: "required_fields", Severity: models.SeverityError, Message: "second run"},
	})

	stored, err := models.FetchBatchMessages(database.DB, batchID)
	require.NoError(t, err)
	require.Len(t, stored, 1, "previous report is fully replaced")
	assert.Equal(t, "second run", stored[0].Message)
}

func TestReplaceBatchMessagesEmptyReport(t *testing.T) {
	batchID, _ := seedBatch(t, models.DocTypeInvoice)

	replaceMessages(t, batchID, []models.ValidationMessage{
		{RuleID: "required_fields", Severity: models.SeverityError, Message: "stale"},
	})
	replaceMessages(t, batchID, nil)

	stored, err := models.FetchBatchMessages(database.DB, batchID)
	require.NoError(t, err)
	assert.Empty(t, stored, "a clean run clears the report")
}

func TestBatchStatusLifecycle(t *testing.T) {
	batchID, _ := seedBatch(t, models.DocTypeInvoice)

	batch, err := models.GetBatch(database.DB, batchID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusExtracting, batch.Status)

	require.NoError(t, batch.UpdateStatus(database.DB, models.BatchStatusReady))

	reloaded, err := models.GetBatch(database.DB, batchID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusReady, reloaded.Status)
}

func TestGetBatchNotFound(t *testing.T) {
	_, err := models.GetBatch(database.DB, "no-such-batch")
	assert.ErrorIs(t, err, models.ErrBatchNotFound)
}

func TestFetchBatchDocumentsOrdered(t *testing.T) {
	batchID, docIDs := seedBatch(t, models.DocTypeInvoice, models.DocTypePackingList, models.DocTypeContract)

	docs, err := models.FetchBatchDocuments(database.DB, batchID)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	for i := 1; i < len(docs); i++ {
		assert.Less(t, docs[i-1].ID, docs[i].ID)
	}
	seen := make(map[string]bool)
	for _, doc := range docs {
		seen[doc.ID] = true
	}
	for _, id := range docIDs {
		assert.True(t, seen[id])
	}
}

func TestParseDocType(t *testing.T) {
	dt, ok := models.ParseDocType("INVOICE")
	assert.True(t, ok)
	assert.Equal(t, models.DocTypeInvoice, dt)

	_, ok = models.ParseDocType("UNKNOWN")
	assert.False(t, ok)

	_, ok = models.ParseDocType("CARGO_MANIFEST")
	assert.False(t, ok)
}
