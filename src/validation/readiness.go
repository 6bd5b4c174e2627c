package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/username/cargodocs/backend/src/models"
)

// LackingField names one field blocking review readiness and why.
type LackingField struct {
	DocID    string `json:"doc_id"`
	FieldKey string `json:"field_key"`
	Reason   string `json:"reason"`
}

// ReadinessReport is the verdict of the review-completeness gate.
type ReadinessReport struct {
	Ready   bool           `json:"ready"`
	Lacking []LackingField `json:"lacking,omitempty"`
}

// CheckReviewReadiness decides whether a batch is ready for validation: every
// schema-required field must have a non-blank latest value, and every latest
// field value must meet the confidence threshold (a human correction is
// written at full confidence, so reviewed fields always pass). The same
// predicate drives both the pipeline gate and UI highlighting.
func CheckReviewReadiness(ctx *Context, confidenceThreshold float64) ReadinessReport {
	var lacking []LackingField

	for _, doc := range ctx.Documents {
		schema := models.GetSchema(doc.DocType)

		keys := make([]string, 0, len(schema))
		for key, spec := range schema {
			if spec.Required && !strings.HasPrefix(key, productKeyPrefix) {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			entry, found := ctx.LatestField(doc.ID, key)
			if !found || !entry.HasValue() {
				lacking = append(lacking, LackingField{
					DocID:    doc.ID,
					FieldKey: key,
					Reason:   "required field has no value",
				})
			}
		}

		fieldKeys := make([]string, 0, len(ctx.Fields[doc.ID]))
		for key := range ctx.Fields[doc.ID] {
			fieldKeys = append(fieldKeys, key)
		}
		sort.Strings(fieldKeys)
		for _, key := range fieldKeys {
			entry := ctx.Fields[doc.ID][key]
			if !entry.Latest || !entry.HasValue() {
				continue
			}
			if entry.Confidence < confidenceThreshold {
				lacking = append(lacking, LackingField{
					DocID:    doc.ID,
					FieldKey: key,
					Reason: fmt.Sprintf("confidence %.2f below threshold %.2f, needs manual confirmation",
						entry.Confidence, confidenceThreshold),
				})
			}
		}
	}

	return ReadinessReport{Ready: len(lacking) == 0, Lacking: lacking}
}
