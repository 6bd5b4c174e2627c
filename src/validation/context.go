package validation

import (
	"fmt"
	"sort"

	"github.com/username/cargodocs/backend/src/models"
)

// FieldRef identifies "the field named FieldKey within documents of type
// DocType". Rule catalogs are built from these; they are never persisted.
// DocType stays a plain string so a catalog typo surfaces as an availability
// warning at evaluation time instead of failing the whole run.
type FieldRef struct {
	DocType  string
	FieldKey string
	Label    string
}

// DisplayName is what messages call the field.
func (r FieldRef) DisplayName() string {
	if r.Label != "" {
		return r.Label
	}
	return r.DocType + "." + r.FieldKey
}

// FieldValueRecord is one successfully normalized field value on one document.
type FieldValueRecord struct {
	Document models.Document
	Field    models.FilledField
	Value    Value
}

// InvalidRecord is a field whose raw value exists but failed normalization.
type InvalidRecord struct {
	Document models.Document
	Field    models.FilledField
}

// FieldCollection is the outcome of resolving a FieldRef against a batch
// snapshot, split into usable records and the various unavailability cases.
type FieldCollection struct {
	Ref            FieldRef
	Kind           ValueKind
	Records        []FieldValueRecord
	MissingDocs    []models.Document
	Invalid        []InvalidRecord
	DocTypeMissing bool
	UnknownDocType bool
}

// Context is an immutable snapshot of one batch: its documents and their
// latest ledger entries. The engine performs no I/O; everything it needs is
// resolved from here.
type Context struct {
	BatchID   string
	Documents []models.Document
	Fields    map[string]map[string]models.FilledField // doc id -> field key -> latest entry
}

// NewContext builds a snapshot. Documents are ordered by id so record order,
// anchor selection and message order are identical across runs.
func NewContext(batchID string, documents []models.Document, fields map[string]map[string]models.FilledField) *Context {
	docs := make([]models.Document, len(documents))
	copy(docs, documents)
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	if fields == nil {
		fields = map[string]map[string]models.FilledField{}
	}
	return &Context{BatchID: batchID, Documents: docs, Fields: fields}
}

// DocumentsOfType returns the batch's documents of one type, in id order.
func (c *Context) DocumentsOfType(docType models.DocType) []models.Document {
	var docs []models.Document
	for _, d := range c.Documents {
		if d.DocType == docType {
			docs = append(docs, d)
		}
	}
	return docs
}

// LatestField looks up the latest ledger entry for (docID, fieldKey).
func (c *Context) LatestField(docID, fieldKey string) (models.FilledField, bool) {
	entry, ok := c.Fields[docID][fieldKey]
	return entry, ok
}

// Resolve maps a FieldRef to the set of documents of that type, splitting the
// outcomes into normalized records, missing docs and invalid records.
func (c *Context) Resolve(ref FieldRef, kind ValueKind) FieldCollection {
	coll := FieldCollection{Ref: ref, Kind: kind}

	docType, ok := models.ParseDocType(ref.DocType)
	if !ok {
		// A rule referencing an undefined type is a catalog defect, not a
		// data problem; report it and evaluate nothing.
		coll.UnknownDocType = true
		return coll
	}

	docs := c.DocumentsOfType(docType)
	if len(docs) == 0 {
		coll.DocTypeMissing = true
		return coll
	}

	for _, doc := range docs {
		entry, found := c.LatestField(doc.ID, ref.FieldKey)
		if !found || !entry.HasValue() {
			coll.MissingDocs = append(coll.MissingDocs, doc)
			continue
		}
		value, outcome := Normalize(entry.Value, kind)
		switch outcome {
		case OutcomeOK:
			coll.Records = append(coll.Records, FieldValueRecord{Document: doc, Field: entry, Value: value})
		case OutcomeInvalid:
			coll.Invalid = append(coll.Invalid, InvalidRecord{Document: doc, Field: entry})
		default:
			coll.MissingDocs = append(coll.MissingDocs, doc)
		}
	}
	return coll
}

// availabilityMessages converts every missing/invalid/unresolvable outcome of
// a resolution into WARN messages, so a rule that cannot run is never silent.
func availabilityMessages(ruleID string, coll FieldCollection) []models.ValidationMessage {
	availabilityID := ruleID + "_availability"
	var msgs []models.ValidationMessage

	if coll.UnknownDocType {
		msgs = append(msgs, models.ValidationMessage{
			RuleID:   availabilityID,
			Severity: models.SeverityWarn,
			Message:  fmt.Sprintf("validation rule %s references unknown document type %q", ruleID, coll.Ref.DocType),
		})
		return msgs
	}
	if coll.DocTypeMissing {
		msgs = append(msgs, models.ValidationMessage{
			RuleID:   availabilityID,
			Severity: models.SeverityWarn,
			Message:  fmt.Sprintf("no %s document in batch to check %s", coll.Ref.DocType, coll.Ref.DisplayName()),
		})
		return msgs
	}
	for _, doc := range coll.MissingDocs {
		msgs = append(msgs, models.ValidationMessage{
			RuleID:   availabilityID,
			Severity: models.SeverityWarn,
			Message:  fmt.Sprintf("%s has no value for %s", docLabel(doc), coll.Ref.DisplayName()),
			Refs:     []models.FieldPointer{{DocID: doc.ID, FieldKey: coll.Ref.FieldKey}},
		})
	}
	for _, inv := range coll.Invalid {
		raw := inv.Field.RawValue()
		msgs = append(msgs, models.ValidationMessage{
			RuleID:   availabilityID,
			Severity: models.SeverityWarn,
			Message: fmt.Sprintf("%s value %q on %s could not be read as a %s",
				coll.Ref.DisplayName(), raw, docLabel(inv.Document), coll.Kind.Noun()),
			Refs: []models.FieldPointer{{DocID: inv.Document.ID, FieldKey: coll.Ref.FieldKey, Value: inv.Field.Value}},
		})
	}
	return msgs
}

// docLabel names a document in user-facing messages.
func docLabel(doc models.Document) string {
	if doc.Filename != "" {
		return fmt.Sprintf("%s (%s)", doc.DocType, doc.Filename)
	}
	return fmt.Sprintf("%s (%s)", doc.DocType, doc.ID)
}
