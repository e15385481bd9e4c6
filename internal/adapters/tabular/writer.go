package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/kpieval/internal/domain/scoring"
)

// Format is an export file format.
type Format string

// Export formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DefaultSheetName is the worksheet name used in XLSX exports.
const DefaultSheetName = "Evaluasi KPI"

const exportBaseName = "hasil_evaluasi_kpi"

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown export format")

// Header is the column layout of exported results.
var Header = []string{
	"NAMA KPI",
	"BOBOT",
	"TARGET TW TERKAIT",
	"REALISASI TW TERKAIT",
	"POLARITAS",
	"CAPAIAN (%)",
	"SKOR TERTIMBANG",
	"FINAL SKOR",
	"KATEGORI",
}

// ParseFormat parses an export format name. Empty means XLSX.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FileName is the attachment name for an export in f.
func (f Format) FileName() string {
	return exportBaseName + "." + string(f)
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Table flattens a batch into export rows: one row per scored KPI followed
// by a TOTAL row. The final score and category repeat on every row so each
// line stands on its own once the file is sorted or filtered.
func Table(batch scoring.BatchResult) [][]any {
	final := batch.FinalScore
	label := batch.Category.Label()

	out := make([][]any, 0, len(batch.Rows)+1)
	for _, r := range batch.Rows {
		var target any = ""
		if r.HasTarget {
			target = r.Target
		}
		out = append(out, []any{
			r.Name,
			r.Weight,
			target,
			r.Realization,
			r.RawPolarity,
			r.AchievementPct,
			r.WeightedScore,
			final,
			label,
		})
	}
	out = append(out, []any{
		"TOTAL",
		batch.TotalWeight,
		"", "", "", "",
		batch.TotalWeightedScore,
		final,
		label,
	})
	return out
}

// Write exports batch to w in format f.
func Write(w io.Writer, batch scoring.BatchResult, f Format, sheet string) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, batch)
	case FormatXLSX:
		return WriteXLSX(w, batch, sheet)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// WriteCSV writes batch as comma separated text.
func WriteCSV(w io.Writer, batch scoring.BatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Table(batch) {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = cellText(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes batch as a single-sheet workbook.
func WriteXLSX(w io.Writer, batch scoring.BatchResult, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rows := Table(batch)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := styleSheet(f, sheet, len(rows)+1); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func styleSheet(f *excelize.File, sheet string, lastRow int) error {
	lastCol, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	total := "A" + strconv.Itoa(lastRow)
	if err := f.SetCellStyle(sheet, total, lastCol+strconv.Itoa(lastRow), bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", lastCol, 18)
}

func cellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
