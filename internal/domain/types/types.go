// Package types contains request shapes shared by the HTTP API and the CLI.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/okian/kpieval/internal/domain/model"
)

// Cell is a spreadsheet-like value that decodes from a JSON string, number
// or null. Numbers keep their literal text so the scoring filter sees what
// the client sent.
type Cell string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cell(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("cell must be a string, number or null: %w", err)
		}
		*c = Cell(n.String())
		return nil
	}
}

// Row is one KPI row as sent by API clients.
type Row struct {
	Name        Cell `json:"name"`
	Weight      Cell `json:"weight"`
	Target      Cell `json:"target"`
	Realization Cell `json:"realization"`
	Polarity    Cell `json:"polarity"`
	Position    Cell `json:"position,omitempty"`
}

// Record converts r into a raw scoring record.
func (r Row) Record() model.Record {
	return model.Record{
		model.FieldName:        string(r.Name),
		model.FieldWeight:      string(r.Weight),
		model.FieldTarget:      string(r.Target),
		model.FieldRealization: string(r.Realization),
		model.FieldPolarity:    string(r.Polarity),
		model.FieldPosition:    string(r.Position),
	}
}

// EvaluateRequest is the JSON body of the evaluation endpoints.
type EvaluateRequest struct {
	Mode     string `json:"mode,omitempty"`
	Position string `json:"position,omitempty"`
	Rows     []Row  `json:"rows"`
}

// Records converts every row, keeping order.
func (r EvaluateRequest) Records() []model.Record {
	out := make([]model.Record, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Record()
	}
	return out
}
