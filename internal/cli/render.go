package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	service "github.com/okian/kpieval/internal/app"
	"github.com/okian/kpieval/internal/domain/scoring"
)

var categoryColors = map[scoring.Category]lipgloss.Color{
	scoring.CategoryIstimewa:   lipgloss.Color("28"),
	scoring.CategorySangatBaik: lipgloss.Color("34"),
	scoring.CategoryBaik:       lipgloss.Color("39"),
	scoring.CategoryCukup:      lipgloss.Color("214"),
	scoring.CategoryKurang:     lipgloss.Color("196"),
}

var tableHeaders = []string{"NAMA KPI", "BOBOT", "TARGET", "REALISASI", "POLARITAS", "CAPAIAN (%)", "SKOR TERTIMBANG"}

// renderer prints reports as tables. Without color it uses plain styles
// and ASCII borders so the output stays readable in logs and pipes.
type renderer struct {
	w     io.Writer
	color bool

	title  lipgloss.Style
	header lipgloss.Style
	dim    lipgloss.Style
	warn   lipgloss.Style
	border lipgloss.Border
}

func newRenderer(w io.Writer, color bool) *renderer {
	r := &renderer{
		w:      w,
		color:  color,
		title:  lipgloss.NewStyle(),
		header: lipgloss.NewStyle(),
		dim:    lipgloss.NewStyle(),
		warn:   lipgloss.NewStyle(),
		border: lipgloss.ASCIIBorder(),
	}
	if color {
		r.title = r.title.Bold(true).Foreground(lipgloss.Color("45"))
		r.header = r.header.Bold(true)
		r.dim = r.dim.Foreground(lipgloss.Color("245"))
		r.warn = r.warn.Bold(true).Foreground(lipgloss.Color("196"))
		r.border = lipgloss.RoundedBorder()
	}
	return r
}

func (r *renderer) fileReport(fr service.FileReport) {
	fmt.Fprintln(r.w, r.title.Render(fr.Path))
	if fr.Err != nil && !errors.Is(fr.Err, service.ErrZeroTotalWeight) {
		fmt.Fprintf(r.w, "  %s %s\n\n", r.warn.Render("error:"), fr.Err)
		return
	}

	res := fr.Report.Result
	fmt.Fprintln(r.w, r.table(res))
	fmt.Fprintf(r.w, "  %s %s  %s %s  %s\n",
		r.dim.Render("mode"), res.Mode,
		r.dim.Render("rows"), strconv.Itoa(res.ScoredCount)+"/"+strconv.Itoa(res.InputCount),
		r.dim.Render("id "+fr.Report.ID),
	)
	fmt.Fprintf(r.w, "  FINAL SKOR %s  KATEGORI %s\n", num(res.FinalScore), r.category(res.Category))
	if fr.Err != nil {
		fmt.Fprintf(r.w, "  %s %s\n", r.warn.Render("error:"), fr.Err)
	}
	r.exclusions(res.Excluded)
	fmt.Fprintln(r.w)
}

func (r *renderer) table(res scoring.BatchResult) string {
	rows := make([][]string, 0, len(res.Rows)+1)
	for _, row := range res.Rows {
		target := ""
		if row.HasTarget {
			target = num(row.Target)
		}
		rows = append(rows, []string{
			row.Name,
			num(row.Weight),
			target,
			num(row.Realization),
			row.RawPolarity,
			num(row.AchievementPct),
			num(row.WeightedScore),
		})
	}
	rows = append(rows, []string{"TOTAL", num(res.TotalWeight), "", "", "", "", num(res.TotalWeightedScore)})
	last := len(rows) - 1

	return table.New().
		Border(r.border).
		BorderStyle(r.dim).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col > 0 && col != 4 {
				s = s.Align(lipgloss.Right)
			}
			if row == table.HeaderRow || row == last {
				s = s.Inherit(r.header)
			}
			return s
		}).
		String()
}

func (r *renderer) category(c scoring.Category) string {
	if !r.color {
		return c.Label()
	}
	return lipgloss.NewStyle().Bold(true).Foreground(categoryColors[c]).Render(c.Label())
}

func (r *renderer) exclusions(ex []scoring.Exclusion) {
	if len(ex) == 0 {
		return
	}
	fmt.Fprintf(r.w, "  %s\n", r.dim.Render(fmt.Sprintf("%d row(s) excluded:", len(ex))))
	for _, e := range ex {
		line := fmt.Sprintf("    #%d %s: %s (%s", e.Index+1, e.Name, e.Reason, e.Field)
		if e.Value != "" {
			line += fmt.Sprintf(" = %q", e.Value)
		}
		fmt.Fprintln(r.w, line+")")
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
