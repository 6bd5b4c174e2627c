package validation

import (
	"fmt"

	"github.com/username/cargodocs/backend/src/models"
)

// Evaluate resolves the anchor date, then checks every comparison pairwise
// across the Cartesian product of anchor and comparison documents. Duplicate
// documents of the same type are each checked independently; there is no
// "pick one" policy. A comparison whose field cannot be resolved is skipped
// on its own (already reported via availability) without blocking the rest of
// the rule.
func (r DateRule) Evaluate(ctx *Context) []models.ValidationMessage {
	anchorColl := ctx.Resolve(r.Anchor, KindDate)
	msgs := availabilityMessages(r.RuleID, anchorColl)
	if len(anchorColl.Records) == 0 {
		// Nothing to anchor against.
		return msgs
	}

	for _, cmp := range r.Comparisons {
		otherColl := ctx.Resolve(cmp.Other, KindDate)
		msgs = append(msgs, availabilityMessages(r.RuleID, otherColl)...)
		if len(otherColl.Records) == 0 {
			continue
		}

		for _, anchorRec := range anchorColl.Records {
			for _, otherRec := range otherColl.Records {
				if cmp.Op.Holds(anchorRec.Value.Date, otherRec.Value.Date) {
					continue
				}
				message := fmt.Sprintf("%s %q on %s must be %s %s %q on %s",
					r.Anchor.DisplayName(), anchorRec.Field.RawValue(), docLabel(anchorRec.Document),
					cmp.Op.Phrase(),
					cmp.Other.DisplayName(), otherRec.Field.RawValue(), docLabel(otherRec.Document))
				if cmp.Note != "" {
					message += " (" + cmp.Note + ")"
				}
				msgs = append(msgs, models.ValidationMessage{
					RuleID:   r.RuleID,
					Severity: r.Severity,
					Message:  message,
					Refs: []models.FieldPointer{
						{DocID: anchorRec.Document.ID, FieldKey: r.Anchor.FieldKey, Value: anchorRec.Field.Value},
						{DocID: otherRec.Document.ID, FieldKey: cmp.Other.FieldKey, Value: otherRec.Field.Value},
					},
				})
			}
		}
	}
	return msgs
}
