package scoring

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Polarity is the direction in which achievement is measured.
type Polarity int

// Known polarities. Neutral is the zero value so unknown text degrades to it.
const (
	Neutral Polarity = iota
	Positive
	Negative
)

// String returns the canonical lower-case name.
func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Polarity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePolarity maps free text onto a Polarity. Matching ignores case,
// surrounding whitespace and full-width forms; anything unrecognized is
// Neutral.
func ParsePolarity(text string) Polarity {
	// cases.Caser is stateful, so one per call.
	key := cases.Fold().String(norm.NFKC.String(strings.TrimSpace(text)))
	switch key {
	case "positif", "positive":
		return Positive
	case "negatif", "negative":
		return Negative
	default:
		return Neutral
	}
}
