package validation

import (
	"fmt"
	"strings"

	"github.com/username/cargodocs/backend/src/models"
)

// Evaluate takes the first anchor record as the canonical value, checks the
// remaining anchor records against it (anchor documents can disagree among
// themselves), then independently checks every target record.
func (r AnchoredEqualityRule) Evaluate(ctx *Context) []models.ValidationMessage {
	anchorColl := ctx.Resolve(r.Anchor, r.Kind)
	msgs := availabilityMessages(r.RuleID, anchorColl)
	if len(anchorColl.Records) == 0 {
		return msgs
	}

	canonical := anchorColl.Records[0]
	for _, rec := range anchorColl.Records[1:] {
		if rec.Value.Equal(canonical.Value) {
			continue
		}
		msgs = append(msgs, r.violation(canonical, rec, r.Anchor))
	}

	for _, target := range r.Targets {
		targetColl := ctx.Resolve(target, r.Kind)
		msgs = append(msgs, availabilityMessages(r.RuleID, targetColl)...)
		for _, rec := range targetColl.Records {
			if rec.Value.Equal(canonical.Value) {
				continue
			}
			msgs = append(msgs, r.violation(canonical, rec, target))
		}
	}
	return msgs
}

func (r AnchoredEqualityRule) violation(canonical, offending FieldValueRecord, ref FieldRef) models.ValidationMessage {
	return models.ValidationMessage{
		RuleID:   r.RuleID,
		Severity: r.Severity,
		Message: fmt.Sprintf("%s %q on %s does not match %s %q on %s",
			ref.DisplayName(), offending.Field.RawValue(), docLabel(offending.Document),
			r.Anchor.DisplayName(), canonical.Field.RawValue(), docLabel(canonical.Document)),
		Refs: []models.FieldPointer{
			{DocID: canonical.Document.ID, FieldKey: r.Anchor.FieldKey, Value: canonical.Field.Value},
			{DocID: offending.Document.ID, FieldKey: ref.FieldKey, Value: offending.Field.Value},
		},
	}
}

// Evaluate pools every referenced field and partitions the records by
// normalized value. More than one distinct value yields a single message
// listing each value with its contributing documents; the rule reports
// disagreement, not deviation from an anchor.
func (r GroupEqualityRule) Evaluate(ctx *Context) []models.ValidationMessage {
	var msgs []models.ValidationMessage
	var pooled []FieldValueRecord
	for _, ref := range r.Refs {
		coll := ctx.Resolve(ref, r.Kind)
		msgs = append(msgs, availabilityMessages(r.RuleID, coll)...)
		pooled = append(pooled, coll.Records...)
	}
	if len(pooled) < 2 {
		// Nothing to compare.
		return msgs
	}

	var order []string
	groups := make(map[string][]FieldValueRecord)
	for _, rec := range pooled {
		key := rec.Value.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}
	if len(groups) < 2 {
		return msgs
	}

	var parts []string
	var refs []models.FieldPointer
	for _, key := range order {
		recs := groups[key]
		var docNames []string
		for _, rec := range recs {
			docNames = append(docNames, docLabel(rec.Document))
			refs = append(refs, models.FieldPointer{
				DocID:    rec.Document.ID,
				FieldKey: rec.Field.FieldKey,
				Value:    rec.Field.Value,
			})
		}
		parts = append(parts, fmt.Sprintf("%q on %s", recs[0].Field.RawValue(), strings.Join(docNames, ", ")))
	}

	msgs = append(msgs, models.ValidationMessage{
		RuleID:   r.RuleID,
		Severity: r.Severity,
		Message:  fmt.Sprintf("documents disagree on %s: %s", groupDisplayName(r.Refs), strings.Join(parts, " vs ")),
		Refs:     refs,
	})
	return msgs
}

func groupDisplayName(refs []FieldRef) string {
	if len(refs) == 0 {
		return ""
	}
	if refs[0].Label != "" {
		return refs[0].Label
	}
	return refs[0].FieldKey
}
