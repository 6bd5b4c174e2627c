package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ValueKind selects how a raw field value is normalized before comparison.
type ValueKind int

const (
	// KindStringFold is the default for text comparisons: whitespace collapse
	// plus case-fold, so equality is locale-naively case-insensitive.
	KindStringFold ValueKind = iota
	KindString
	// KindStringUpper is used for codes (Incoterms, commodity codes) whose
	// canonical form is uppercase.
	KindStringUpper
	KindNumber
	KindDate
)

// Noun returns what a kind's value is called in user-facing messages.
func (k ValueKind) Noun() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// Outcome classifies a normalization attempt. Missing (blank/NULL) and
// invalid (non-blank but unparsable) are distinct outcomes: a reviewer fixes
// them differently.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeMissing
	OutcomeInvalid
)

// Value is a normalized field value. Exactly one of Date/Num/Str is
// meaningful depending on Kind.
type Value struct {
	Kind ValueKind
	Date time.Time
	Num  float64
	Str  string
}

// floatTolerance absorbs formatting noise in values parsed from scanned text.
const floatTolerance = 1e-9

// Equal compares two normalized values of the same kind.
func (v Value) Equal(o Value) bool {
	switch v.Kind {
	case KindDate:
		return v.Date.Equal(o.Date)
	case KindNumber:
		return math.Abs(v.Num-o.Num) <= floatTolerance
	default:
		return v.Str == o.Str
	}
}

// Key returns a canonical string used to bucket values for group comparisons.
func (v Value) Key() string {
	switch v.Kind {
	case KindDate:
		return v.Date.Format("2006-01-02")
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return v.Str
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"2006.01.02",
}

// NormalizeDate parses a date from one of the formats extraction produces.
// Comparisons are date-only; no timezone arithmetic.
func NormalizeDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// NormalizeNumber extracts the first contiguous decimal number from a raw
// value. Internal whitespace is stripped first so thousands separators
// written as spaces ("1 234.5 kg") do not split the number.
func NormalizeNumber(raw string) (float64, bool) {
	compact := strings.Join(strings.Fields(raw), "")
	match := numberPattern.FindString(compact)
	if match == "" {
		return 0, false
	}
	num, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// NormalizeString collapses internal whitespace runs to a single space and
// trims. An empty result means the value is missing.
func NormalizeString(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// Normalize maps a raw textual value to a comparable canonical form. A nil or
// blank raw value is always missing; a non-blank value the kind cannot parse
// is invalid.
func Normalize(raw *string, kind ValueKind) (Value, Outcome) {
	if raw == nil {
		return Value{}, OutcomeMissing
	}
	collapsed := NormalizeString(*raw)
	if collapsed == "" {
		return Value{}, OutcomeMissing
	}

	switch kind {
	case KindDate:
		date, ok := NormalizeDate(collapsed)
		if !ok {
			return Value{}, OutcomeInvalid
		}
		return Value{Kind: kind, Date: date}, OutcomeOK
	case KindNumber:
		num, ok := NormalizeNumber(collapsed)
		if !ok {
			return Value{}, OutcomeInvalid
		}
		return Value{Kind: kind, Num: num}, OutcomeOK
	case KindString:
		return Value{Kind: kind, Str: collapsed}, OutcomeOK
	case KindStringUpper:
		return Value{Kind: kind, Str: strings.ToUpper(collapsed)}, OutcomeOK
	default:
		return Value{Kind: kind, Str: strings.ToLower(collapsed)}, OutcomeOK
	}
}
