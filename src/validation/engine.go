package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/username/cargodocs/backend/src/models"
)

// Engine runs the whole rule catalog over one batch snapshot. It is a pure,
// synchronous, single-pass computation: no I/O, no shared state, and the only
// output is the ordered message list.
type Engine struct {
	catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

// Run evaluates, in order: required fields, chronology, anchored equality,
// group equality, product reconciliation, then the global agreement checks.
// The order is not semantically significant but is stable, so repeated runs
// over an unchanged batch produce identical reports. The second return value
// is the product rows that could not be identified for matching; callers
// surface those separately.
func (e *Engine) Run(ctx *Context) ([]models.ValidationMessage, []ProductRow) {
	msgs := requiredFieldMessages(ctx)

	for _, rule := range e.catalog.DateRules {
		msgs = append(msgs, rule.Evaluate(ctx)...)
	}
	for _, rule := range e.catalog.AnchoredRules {
		msgs = append(msgs, rule.Evaluate(ctx)...)
	}
	for _, rule := range e.catalog.GroupRules {
		msgs = append(msgs, rule.Evaluate(ctx)...)
	}

	productMsgs, unidentified := ReconcileProducts(ctx)
	msgs = append(msgs, productMsgs...)

	for _, rule := range e.catalog.GlobalChecks {
		msgs = append(msgs, rule.Evaluate(ctx)...)
	}
	return msgs, unidentified
}

// requiredFieldMessages reports every schema-required scalar field that has
// no latest value (or a blank one). The flattened products.* template keys
// are per-row and are covered by the product reconciler instead.
func requiredFieldMessages(ctx *Context) []models.ValidationMessage {
	var msgs []models.ValidationMessage
	for _, doc := range ctx.Documents {
		schema := models.GetSchema(doc.DocType)

		keys := make([]string, 0, len(schema))
		for key, spec := range schema {
			if !spec.Required || strings.HasPrefix(key, productKeyPrefix) {
				continue
			}
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			entry, found := ctx.LatestField(doc.ID, key)
			if found && entry.HasValue() {
				continue
			}
			msgs = append(msgs, models.ValidationMessage{
				RuleID:   "required_fields",
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("%s is missing required field %q", docLabel(doc), models.FieldLabel(doc.DocType, key)),
				Refs:     []models.FieldPointer{{DocID: doc.ID, FieldKey: key}},
			})
		}
	}
	return msgs
}
