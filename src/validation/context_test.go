package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cargodocs/backend/src/models"
)

func makeDoc(id string, docType models.DocType) models.Document {
	return models.Document{ID: id, BatchID: "batch-1", DocType: docType}
}

type fieldSpec struct {
	key   string
	value string
}

// makeContext builds a snapshot from documents and per-document field values.
func makeContext(docs []models.Document, fields map[string][]fieldSpec) *Context {
	latest := make(map[string]map[string]models.FilledField)
	for docID, specs := range fields {
		latest[docID] = make(map[string]models.FilledField)
		for _, spec := range specs {
			value := spec.value
			latest[docID][spec.key] = models.FilledField{
				DocumentID: docID,
				FieldKey:   spec.key,
				Value:      &value,
				Confidence: 0.9,
				Source:     "extraction",
				Version:    1,
				Latest:     true,
			}
		}
	}
	return NewContext("batch-1", docs, latest)
}

func TestResolveUnknownDocType(t *testing.T) {
	ctx := makeContext([]models.Document{makeDoc("doc-1", models.DocTypeInvoice)}, nil)

	coll := ctx.Resolve(FieldRef{DocType: "CARGO_MANIFEST", FieldKey: "manifest_date"}, KindDate)

	assert.True(t, coll.UnknownDocType)
	assert.False(t, coll.DocTypeMissing)
	assert.Empty(t, coll.Records)
	assert.Empty(t, coll.MissingDocs)
	assert.Empty(t, coll.Invalid)
}

func TestResolveDocTypeMissing(t *testing.T) {
	ctx := makeContext([]models.Document{makeDoc("doc-1", models.DocTypeInvoice)}, nil)

	coll := ctx.Resolve(FieldRef{DocType: "PROFORMA", FieldKey: "proforma_date"}, KindDate)

	assert.True(t, coll.DocTypeMissing)
	assert.Empty(t, coll.Records)
}

func TestResolveSplitsOutcomes(t *testing.T) {
	docs := []models.Document{
		makeDoc("doc-1", models.DocTypeInvoice),
		makeDoc("doc-2", models.DocTypeInvoice),
		makeDoc("doc-3", models.DocTypeInvoice),
	}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {{key: "invoice_date", value: "2024-01-03"}},
		"doc-2": {{key: "invoice_date", value: "N/A"}},
		// doc-3 has no invoice_date at all.
	})

	coll := ctx.Resolve(FieldRef{DocType: "INVOICE", FieldKey: "invoice_date"}, KindDate)

	require.Len(t, coll.Records, 1)
	assert.Equal(t, "doc-1", coll.Records[0].Document.ID)
	assert.Equal(t, "2024-01-03", coll.Records[0].Value.Date.Format("2006-01-02"))

	require.Len(t, coll.Invalid, 1)
	assert.Equal(t, "doc-2", coll.Invalid[0].Document.ID)

	require.Len(t, coll.MissingDocs, 1)
	assert.Equal(t, "doc-3", coll.MissingDocs[0].ID)
}

func TestBlankValueIsMissingNotInvalid(t *testing.T) {
	docs := []models.Document{makeDoc("doc-1", models.DocTypeInvoice)}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {{key: "invoice_date", value: "   "}},
	})

	coll := ctx.Resolve(FieldRef{DocType: "INVOICE", FieldKey: "invoice_date"}, KindDate)

	assert.Empty(t, coll.Invalid)
	assert.Len(t, coll.MissingDocs, 1)
}

func TestAvailabilityMessages(t *testing.T) {
	docs := []models.Document{
		makeDoc("doc-1", models.DocTypeInvoice),
		makeDoc("doc-2", models.DocTypeInvoice),
	}
	ctx := makeContext(docs, map[string][]fieldSpec{
		"doc-1": {{key: "invoice_date", value: "garbage"}},
	})

	coll := ctx.Resolve(FieldRef{DocType: "INVOICE", FieldKey: "invoice_date", Label: "Invoice date"}, KindDate)
	msgs := availabilityMessages("date_invoice_before_shipment", coll)

	require.Len(t, msgs, 2)
	for _, msg := range msgs {
		assert.Equal(t, "date_invoice_before_shipment_availability", msg.RuleID)
		assert.Equal(t, models.SeverityWarn, msg.Severity)
	}
	// The invalid record's message carries the raw offending value.
	var sawRaw bool
	for _, msg := range msgs {
		for _, ref := range msg.Refs {
			if ref.Value != nil && *ref.Value == "garbage" {
				sawRaw = true
			}
		}
	}
	assert.True(t, sawRaw, "invalid-value availability message should reference the raw value")
}

func TestAvailabilityMessageForUnknownDocType(t *testing.T) {
	ctx := makeContext([]models.Document{makeDoc("doc-1", models.DocTypeInvoice)}, nil)

	coll := ctx.Resolve(FieldRef{DocType: "CARGO_MANIFEST", FieldKey: "x"}, KindStringFold)
	msgs := availabilityMessages("some_rule", coll)

	require.Len(t, msgs, 1)
	assert.Equal(t, "some_rule_availability", msgs[0].RuleID)
	assert.Contains(t, msgs[0].Message, "CARGO_MANIFEST")
}

func TestContextOrdersDocumentsByID(t *testing.T) {
	docs := []models.Document{
		makeDoc("doc-9", models.DocTypeInvoice),
		makeDoc("doc-1", models.DocTypeInvoice),
		makeDoc("doc-5", models.DocTypePackingList),
	}
	ctx := makeContext(docs, nil)

	require.Len(t, ctx.Documents, 3)
	assert.Equal(t, "doc-1", ctx.Documents[0].ID)
	assert.Equal(t, "doc-5", ctx.Documents[1].ID)
	assert.Equal(t, "doc-9", ctx.Documents[2].ID)

	ofType := ctx.DocumentsOfType(models.DocTypeInvoice)
	require.Len(t, ofType, 2)
	assert.Equal(t, "doc-1", ofType[0].ID)
}
