package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/kpieval/internal/domain/model"
)

// Reason explains why a record was left out of a batch.
type Reason string

// Exclusion reasons.
const (
	ReasonMissingField      Reason = "missing_field"
	ReasonUnparseableNumber Reason = "unparseable_number"
	ReasonNegativeWeight    Reason = "negative_weight"
	ReasonNonFinite         Reason = "non_finite"
)

// Exclusion describes one record dropped by Filter.
type Exclusion struct {
	Index  int         `json:"index"` // position in the input sequence
	Name   string      `json:"name,omitempty"`
	Reason Reason      `json:"reason"`
	Field  model.Field `json:"field"`
	Value  string      `json:"value,omitempty"`
}

var (
	polarityFields = []model.Field{model.FieldName, model.FieldWeight, model.FieldTarget, model.FieldRealization, model.FieldPolarity}
	flatFields     = []model.Field{model.FieldName, model.FieldWeight, model.FieldRealization}
)

// RequiredFields returns the fields a record must carry to be scored in mode.
func RequiredFields(mode Mode) []model.Field {
	if mode == ModeFlat {
		return flatFields
	}
	return polarityFields
}

// Filter splits records into scorable rows and exclusions. Rows keep the
// relative order of their source records. Filter never fails; every
// malformed record turns into an Exclusion instead.
func Filter(records []model.Record, mode Mode) ([]Row, []Exclusion) {
	rows := make([]Row, 0, len(records))
	var excluded []Exclusion
	for i, rec := range records {
		row, ex, ok := toRow(i, rec, mode)
		if !ok {
			excluded = append(excluded, ex)
			continue
		}
		rows = append(rows, row)
	}
	return rows, excluded
}

func toRow(index int, rec model.Record, mode Mode) (Row, Exclusion, bool) {
	name, _ := rec.Get(model.FieldName)
	reject := func(reason Reason, f model.Field, value string) (Row, Exclusion, bool) {
		return Row{}, Exclusion{Index: index, Name: name, Reason: reason, Field: f, Value: value}, false
	}

	for _, f := range RequiredFields(mode) {
		if _, ok := rec.Get(f); !ok {
			return reject(ReasonMissingField, f, "")
		}
	}

	row := Row{Index: index, Name: name}

	raw, _ := rec.Get(model.FieldWeight)
	v, err := ParseNumber(raw)
	if err != nil {
		return reject(ReasonUnparseableNumber, model.FieldWeight, raw)
	}
	row.Weight = v

	if raw, ok := rec.Get(model.FieldTarget); ok {
		v, err := ParseNumber(raw)
		switch {
		case err == nil:
			row.Target, row.HasTarget = v, true
		case mode == ModePolarity:
			return reject(ReasonUnparseableNumber, model.FieldTarget, raw)
		}
		// Flat mode ignores an unparseable target; it is display-only there.
	}

	raw, _ = rec.Get(model.FieldRealization)
	v, err = ParseNumber(raw)
	if err != nil {
		return reject(ReasonUnparseableNumber, model.FieldRealization, raw)
	}
	row.Realization = v

	if row.Weight < 0 {
		return reject(ReasonNegativeWeight, model.FieldWeight, strings.TrimSpace(rec[model.FieldWeight]))
	}

	row.RawPolarity, _ = rec.Get(model.FieldPolarity)
	row.Polarity = ParsePolarity(row.RawPolarity)

	// Parseable values can still overflow once scored.
	if !finite(row.Weight * percent) {
		return reject(ReasonNonFinite, model.FieldWeight, strings.TrimSpace(rec[model.FieldWeight]))
	}
	achieved := row.Realization
	if mode == ModePolarity {
		achieved = achievement(row)
	}
	if !finite(achieved) || !finite(achieved*row.Weight) {
		return reject(ReasonNonFinite, model.FieldRealization, strings.TrimSpace(rec[model.FieldRealization]))
	}
	return row, Exclusion{}, true
}

// decimalLiteral matches plain decimal numbers with an optional exponent.
// Hex floats, digit separators and named values such as "Inf" do not match.
var decimalLiteral = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// ParseNumber coerces text into a finite float. Surrounding whitespace and a
// single trailing percent sign are accepted.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if !decimalLiteral.MatchString(s) {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
