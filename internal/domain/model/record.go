// Package model contains domain models passed between layers.
package model

import "strings"

// Field names a canonical KPI column, independent of the header text used
// by a particular input file.
type Field string

// Canonical fields understood by the scoring engine.
const (
	FieldName        Field = "name"
	FieldWeight      Field = "weight"
	FieldTarget      Field = "target"
	FieldRealization Field = "realization"
	FieldPolarity    Field = "polarity"
	FieldPosition    Field = "position" // only used by the pre-filter
)

// Fields lists every canonical field in display order.
var Fields = []Field{FieldName, FieldWeight, FieldTarget, FieldRealization, FieldPolarity, FieldPosition}

// Record is one raw input row keyed by canonical field. Values are kept as
// text; numeric coercion happens in the scoring filter.
type Record map[Field]string

// Get returns the trimmed value of f and whether it is present and non-blank.
func (r Record) Get(f Field) (string, bool) {
	v, ok := r[f]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// FilterPosition returns the records whose position matches position,
// compared case-insensitively. An empty position keeps every record.
func FilterPosition(records []Record, position string) []Record {
	position = strings.TrimSpace(position)
	if position == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if v, ok := r.Get(FieldPosition); ok && strings.EqualFold(v, position) {
			out = append(out, r)
		}
	}
	return out
}
