package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/username/cargodocs/backend/src/models"
	"github.com/username/cargodocs/backend/src/utils"
)

// Product rows are flattened into the ledger as products.<row-id>.<sub-field>.
// Row ids are opaque per-document tokens; the only way to match a line item
// across documents is the composite identity key built from its content.

const productKeyPrefix = "products."

// productFieldKinds lists the comparable sub-fields of a matched row pair and
// the normalization each uses.
var productFieldKinds = []struct {
	Sub  string
	Kind ValueKind
}{
	{"name_product", KindStringFold},
	{"latin_name", KindStringFold},
	{"net_weight", KindNumber},
	{"size_product", KindStringFold},
	{"unit_box", KindNumber},
	{"packages", KindNumber},
	{"gross_weight", KindNumber},
	{"price_per_unit", KindNumber},
	{"total_price", KindNumber},
	{"commodity_code", KindStringUpper},
}

// ProductRow is one physical line-item block within a document.
type ProductRow struct {
	Document models.Document
	RowID    string
	Fields   map[string]string // sub-field -> raw value
}

// FieldKey returns the flattened ledger key of one sub-field of this row.
func (r ProductRow) FieldKey(sub string) string {
	return productKeyPrefix + r.RowID + "." + sub
}

// Name returns the row's raw product name for messages.
func (r ProductRow) Name() string {
	return r.Fields["name_product"]
}

// IdentityKey builds the composite key used to match the row to the "same"
// item on another document: the case-folded name, plus latin name and size
// when present. A row without a usable name cannot be identified.
func (r ProductRow) IdentityKey() (string, bool) {
	name := strings.ToLower(NormalizeString(r.Fields["name_product"]))
	if name == "" {
		return "", false
	}
	parts := []string{name}
	if latin := strings.ToLower(NormalizeString(r.Fields["latin_name"])); latin != "" {
		parts = append(parts, "latin="+latin)
	}
	if size := strings.ToLower(NormalizeString(r.Fields["size_product"])); size != "" {
		parts = append(parts, "size="+size)
	}
	return strings.Join(parts, "|"), true
}

// BuildProductRows groups a document's flattened products.* entries by row id.
// Placeholder rows (the literal "template" row id, or rows whose every value
// is blank) are discarded. Rows come back sorted by row id so downstream
// pairing is stable.
func BuildProductRows(ctx *Context, doc models.Document) []ProductRow {
	byRowID := make(map[string]map[string]string)
	for key, entry := range ctx.Fields[doc.ID] {
		if !entry.Latest || !strings.HasPrefix(key, productKeyPrefix) {
			continue
		}
		rest := strings.SplitN(key[len(productKeyPrefix):], ".", 2)
		if len(rest) != 2 || rest[0] == "" || rest[1] == "" {
			continue
		}
		rowID, sub := rest[0], rest[1]
		if rowID == "template" {
			continue
		}
		if byRowID[rowID] == nil {
			byRowID[rowID] = make(map[string]string)
		}
		if entry.HasValue() {
			byRowID[rowID][sub] = entry.RawValue()
		}
	}

	var rows []ProductRow
	for rowID, fields := range byRowID {
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, ProductRow{Document: doc, RowID: rowID, Fields: fields})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RowID < rows[j].RowID })
	return rows
}

// documentProducts is one document's identifiable rows bucketed by identity
// key, in stable row order.
type documentProducts struct {
	Document models.Document
	Buckets  map[string][]ProductRow
	Keys     []string // bucket keys in first-seen row order
	Total    int
}

func collectDocumentProducts(ctx *Context, doc models.Document) (documentProducts, []ProductRow) {
	dp := documentProducts{Document: doc, Buckets: make(map[string][]ProductRow)}
	var unidentified []ProductRow
	for _, row := range BuildProductRows(ctx, doc) {
		key, ok := row.IdentityKey()
		if !ok {
			// Not matchable, but callers surface these separately rather
			// than losing them from the audit trail.
			unidentified = append(unidentified, row)
			continue
		}
		if _, seen := dp.Buckets[key]; !seen {
			dp.Keys = append(dp.Keys, key)
		}
		dp.Buckets[key] = append(dp.Buckets[key], row)
		dp.Total++
	}
	return dp, unidentified
}

// ReconcileProducts cross-compares repeated line items as multisets keyed by
// identity. The invoice (or proforma, or failing that the document with the
// most identifiable rows) is the canonical product list; every other document
// carrying rows is compared against it. Returns the messages plus the rows
// that could not be identified.
func ReconcileProducts(ctx *Context) ([]models.ValidationMessage, []ProductRow) {
	var withRows []documentProducts
	var unidentified []ProductRow
	for _, doc := range ctx.Documents {
		dp, skipped := collectDocumentProducts(ctx, doc)
		unidentified = append(unidentified, skipped...)
		if dp.Total > 0 {
			withRows = append(withRows, dp)
		}
	}
	if len(withRows) < 2 {
		return nil, unidentified
	}

	anchorIdx := selectAnchor(withRows)
	anchor := withRows[anchorIdx]

	var msgs []models.ValidationMessage
	for i, target := range withRows {
		if i == anchorIdx {
			continue
		}
		msgs = append(msgs, compareProducts(anchor, target)...)
	}
	return msgs, unidentified
}

// selectAnchor prefers INVOICE, then PROFORMA, then whichever document has
// the most identifiable rows. Candidates are already in document-id order, so
// ties resolve deterministically.
func selectAnchor(candidates []documentProducts) int {
	for _, docType := range []models.DocType{models.DocTypeInvoice, models.DocTypeProforma} {
		for i, dp := range candidates {
			if dp.Document.DocType == docType {
				return i
			}
		}
	}
	best := 0
	for i, dp := range candidates {
		if dp.Total > candidates[best].Total {
			best = i
		}
	}
	return best
}

func compareProducts(anchor, target documentProducts) []models.ValidationMessage {
	var msgs []models.ValidationMessage

	// Union of identity keys: anchor's keys first (in anchor row order), then
	// keys only the target has.
	keys := make([]string, 0, len(anchor.Keys)+len(target.Keys))
	keys = append(keys, anchor.Keys...)
	for _, key := range target.Keys {
		if _, inAnchor := anchor.Buckets[key]; !inAnchor {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		anchorRows := anchor.Buckets[key]
		targetRows := target.Buckets[key]
		countA, countT := len(anchorRows), len(targetRows)
		name := key
		if countA > 0 {
			name = anchorRows[0].Name()
		} else if countT > 0 {
			name = targetRows[0].Name()
		}

		if countA > countT {
			// Cardinality, not identity, is wrong: no single target row to
			// blame, so the ref points at the document's products block.
			msgs = append(msgs, models.ValidationMessage{
				RuleID:   "products_missing",
				Severity: models.SeverityError,
				Message: fmt.Sprintf("%s is missing %d row(s) of product %q listed on %s",
					docLabel(target.Document), countA-countT, name, docLabel(anchor.Document)),
				Refs: []models.FieldPointer{{DocID: target.Document.ID, FieldKey: "products"}},
			})
		}
		if countT > countA {
			msgs = append(msgs, models.ValidationMessage{
				RuleID:   "products_extra",
				Severity: models.SeverityWarn,
				Message: fmt.Sprintf("%s lists %d extra row(s) of product %q not on %s",
					docLabel(target.Document), countT-countA, name, docLabel(anchor.Document)),
				Refs: []models.FieldPointer{{DocID: target.Document.ID, FieldKey: "products"}},
			})
		}
		if countA > 0 && countT > 0 && countA != countT {
			msgs = append(msgs, models.ValidationMessage{
				RuleID:   "products_count_mismatch",
				Severity: models.SeverityWarn,
				Message: fmt.Sprintf("product %q appears %d time(s) on %s but %d time(s) on %s",
					name, countA, docLabel(anchor.Document), countT, docLabel(target.Document)),
				Refs: []models.FieldPointer{
					{DocID: anchor.Document.ID, FieldKey: "products"},
					{DocID: target.Document.ID, FieldKey: "products"},
				},
			})
		}

		// Stable positional pairing within the bucket; no attempt at optimal
		// bipartite matching.
		matched := utils.MinInt(countA, countT)
		for i := 0; i < matched; i++ {
			msgs = append(msgs, compareMatchedRows(anchorRows[i], targetRows[i])...)
		}
	}
	return msgs
}

// compareMatchedRows diffs the comparable sub-fields of one matched row pair.
// A value one side has and the other lacks counts as a difference; a value
// that fails its kind-specific parse falls back to folded-text comparison so
// "N/A" against a real number still gets flagged.
func compareMatchedRows(anchorRow, targetRow ProductRow) []models.ValidationMessage {
	var msgs []models.ValidationMessage
	for _, fieldKind := range productFieldKinds {
		rawA, okA := anchorRow.Fields[fieldKind.Sub]
		rawT, okT := targetRow.Fields[fieldKind.Sub]
		if !okA && !okT {
			continue
		}
		if productFieldEqual(rawA, rawT, fieldKind.Kind) {
			continue
		}
		msgs = append(msgs, models.ValidationMessage{
			RuleID:   "products_field_mismatch",
			Severity: models.SeverityWarn,
			Message: fmt.Sprintf("product %q: %s is %q on %s but %q on %s",
				anchorRow.Name(), fieldKind.Sub,
				rawA, docLabel(anchorRow.Document),
				rawT, docLabel(targetRow.Document)),
			Refs: []models.FieldPointer{
				{DocID: anchorRow.Document.ID, FieldKey: anchorRow.FieldKey(fieldKind.Sub), Value: &rawA},
				{DocID: targetRow.Document.ID, FieldKey: targetRow.FieldKey(fieldKind.Sub), Value: &rawT},
			},
		})
	}
	return msgs
}

func productFieldEqual(rawA, rawT string, kind ValueKind) bool {
	return productFieldValueKey(rawA, kind) == productFieldValueKey(rawT, kind)
}

func productFieldValueKey(raw string, kind ValueKind) string {
	value, outcome := Normalize(&raw, kind)
	switch outcome {
	case OutcomeOK:
		return value.Key()
	case OutcomeInvalid:
		return strings.ToLower(NormalizeString(raw))
	default:
		return ""
	}
}
