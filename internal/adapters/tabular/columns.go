// Package tabular reads KPI records from spreadsheet files and writes
// evaluation results back out in the same sheet layout.
package tabular

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/kpieval/internal/domain/model"
)

// Columns maps each canonical field to the header texts that may carry it.
type Columns map[model.Field][]string

// DefaultColumns returns the aliases used by the KPI sheets this tool was
// built around, plus their English equivalents.
func DefaultColumns() Columns {
	return Columns{
		model.FieldName:        {"NAMA KPI", "KPI", "NAME"},
		model.FieldWeight:      {"BOBOT", "WEIGHT"},
		model.FieldTarget:      {"TARGET TW TERKAIT", "TARGET"},
		model.FieldRealization: {"REALISASI TW TERKAIT", "REALISASI", "REALIZATION", "CAPAIAN"},
		model.FieldPolarity:    {"POLARITAS", "POLARITY"},
		model.FieldPosition:    {"JABATAN", "POSISI", "POSITION"},
	}
}

// resolve maps header cell positions to canonical fields. The first header
// that matches a field wins; later duplicates are ignored.
func (c Columns) resolve(header []string) map[int]model.Field {
	lookup := make(map[string]model.Field)
	for _, f := range model.Fields {
		for _, alias := range c[f] {
			key := headerKey(alias)
			if _, taken := lookup[key]; !taken {
				lookup[key] = f
			}
		}
	}

	out := make(map[int]model.Field)
	seen := make(map[model.Field]bool)
	for i, h := range header {
		f, ok := lookup[headerKey(h)]
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		out[i] = f
	}
	return out
}

// headerKey folds case and width and collapses inner whitespace.
func headerKey(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = cases.Fold().String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}
