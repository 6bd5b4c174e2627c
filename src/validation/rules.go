package validation

import (
	"time"

	"github.com/username/cargodocs/backend/src/models"
)

// Rule is the closed set of cross-document checks. Each variant knows how to
// evaluate itself against a batch snapshot; the engine only dispatches.
type Rule interface {
	ID() string
	Evaluate(ctx *Context) []models.ValidationMessage
}

// CompareOp is a calendar-date comparison operator.
type CompareOp string

const (
	OpBefore     CompareOp = "<"
	OpOnOrBefore CompareOp = "<="
	OpAfter      CompareOp = ">"
	OpOnOrAfter  CompareOp = ">="
	OpSameDay    CompareOp = "=="
)

// Holds reports whether "anchor op other" is satisfied.
func (op CompareOp) Holds(anchor, other time.Time) bool {
	switch op {
	case OpBefore:
		return anchor.Before(other)
	case OpOnOrBefore:
		return !anchor.After(other)
	case OpAfter:
		return anchor.After(other)
	case OpOnOrAfter:
		return !anchor.Before(other)
	case OpSameDay:
		return anchor.Equal(other)
	default:
		return false
	}
}

// Phrase is the human-readable rendering used in violation messages.
func (op CompareOp) Phrase() string {
	switch op {
	case OpBefore:
		return "earlier than"
	case OpOnOrBefore:
		return "earlier than or equal to"
	case OpAfter:
		return "later than"
	case OpOnOrAfter:
		return "later than or equal to"
	case OpSameDay:
		return "the same day as"
	default:
		return string(op)
	}
}

// DateComparison is one chronological constraint between the rule's anchor
// date and another document's date.
type DateComparison struct {
	Op    CompareOp
	Other FieldRef
	Note  string
}

// DateRule checks that the anchor date relates to each comparison date as the
// operator demands, pairwise across every document of each type.
type DateRule struct {
	RuleID      string
	Anchor      FieldRef
	Comparisons []DateComparison
	Severity    models.Severity
}

func (r DateRule) ID() string { return r.RuleID }

// AnchoredEqualityRule checks that every target field equals the canonical
// value taken from the first anchor document. Anchor documents are also
// checked against each other, so anchor self-consistency is verified rather
// than assumed.
type AnchoredEqualityRule struct {
	RuleID   string
	Anchor   FieldRef
	Targets  []FieldRef
	Kind     ValueKind
	Severity models.Severity
}

func (r AnchoredEqualityRule) ID() string { return r.RuleID }

// GroupEqualityRule pools every referenced field and reports disagreement
// among the distinct normalized values. Unlike anchored equality no side is
// privileged as correct.
type GroupEqualityRule struct {
	RuleID   string
	Refs     []FieldRef
	Kind     ValueKind
	Severity models.Severity
}

func (r GroupEqualityRule) ID() string { return r.RuleID }
