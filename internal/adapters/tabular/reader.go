package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/kpieval/internal/domain/model"
)

// Reader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoHeader          = errors.New("file has no header row")
	ErrNoKnownColumns    = errors.New("header has no recognizable KPI columns")
	ErrSheetNotFound     = errors.New("worksheet not found")
)

// Reader turns tabular files into raw KPI records.
type Reader struct {
	columns Columns
	sheet   string
}

// Option configures a Reader.
type Option func(*Reader)

// WithColumns overrides the header aliases. Fields absent from cols keep
// their defaults.
func WithColumns(cols map[model.Field][]string) Option {
	return func(r *Reader) {
		for f, aliases := range cols {
			if len(aliases) > 0 {
				r.columns[f] = aliases
			}
		}
	}
}

// WithSheet selects the worksheet read from XLSX files. By default the
// first sheet is used.
func WithSheet(name string) Option {
	return func(r *Reader) {
		r.sheet = name
	}
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{columns: DefaultColumns()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read parses src according to the extension of name (.csv, .tsv, .txt,
// .xlsx, .xlsm).
func (r *Reader) Read(name string, src io.Reader) ([]model.Record, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		return r.ReadDelimited(src, 0)
	case ".tsv":
		return r.ReadDelimited(src, '\t')
	case ".xlsx", ".xlsm":
		return r.ReadXLSX(src)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadDelimited parses delimited text. A zero comma sniffs ',' or ';' from
// the header line.
func (r *Reader) ReadDelimited(src io.Reader, comma rune) ([]model.Record, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read delimited: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if comma == 0 {
		comma = sniffComma(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited: %w", err)
	}
	return r.records(rows)
}

// ReadXLSX parses the configured (or first) worksheet of an XLSX workbook.
func (r *Reader) ReadXLSX(src io.Reader) ([]model.Record, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrSheetNotFound
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return r.records(rows)
}

// records maps a header plus data rows onto canonical records. Rows whose
// cells are all blank are skipped.
func (r *Reader) records(rows [][]string) ([]model.Record, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	mapping := r.columns.resolve(rows[0])
	if len(mapping) == 0 {
		return nil, ErrNoKnownColumns
	}

	out := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(model.Record, len(mapping))
		for i, f := range mapping {
			if i < len(row) {
				rec[f] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func sniffComma(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
