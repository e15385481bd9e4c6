package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/kpieval/internal/adapters/tabular"
	service "github.com/okian/kpieval/internal/app"
)

// ErrEvaluationFailed is returned when at least one input could not be
// evaluated. Per-file details are printed before it is returned.
var ErrEvaluationFailed = errors.New("one or more files failed evaluation")

const chartFileName = "grafik_kpi.png"

type scoreFlags struct {
	mode     string
	position string
	export   string
	chart    bool
	outDir   string
	asJSON   bool
	workers  int
}

func newScoreCommand(g *globalFlags) *cobra.Command {
	var f scoreFlags

	cmd := &cobra.Command{
		Use:   "score FILE...",
		Short: "Score one or more KPI sheets",
		Example: `  kpieval score kpi_q3.xlsx
  kpieval score --mode flat --position "Manager" kpi.csv
  kpieval score --export xlsx --chart --out-dir out/ a.csv b.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, g, &f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.mode, "mode", "", "scoring mode: polarity or flat (default from config)")
	fl.StringVar(&f.position, "position", "", "only score rows for this position")
	fl.StringVar(&f.export, "export", "", "write results as xlsx or csv")
	fl.BoolVar(&f.chart, "chart", false, "write a PNG pie chart of weighted scores")
	fl.StringVar(&f.outDir, "out-dir", ".", "directory for exported files")
	fl.BoolVar(&f.asJSON, "json", false, "print reports as JSON")
	fl.IntVar(&f.workers, "workers", 0, "files evaluated concurrently (default from config)")
	return cmd
}

func runScore(cmd *cobra.Command, g *globalFlags, f *scoreFlags, paths []string) error {
	ctx := cmd.Context()
	cfg, err := g.loadConfig(ctx)
	if err != nil {
		return err
	}

	var format tabular.Format
	if f.export != "" {
		if format, err = tabular.ParseFormat(f.export); err != nil {
			return err
		}
	}

	workers := cfg.Workers
	if f.workers > 0 {
		workers = f.workers
	}
	svc := service.New(
		service.WithWorkerCount(workers),
		service.WithDefaultMode(cfg.Mode()),
		service.WithColumns(cfg.Columns()),
		service.WithSheetName(cfg.SheetName),
		service.WithInputSheet(cfg.InputSheet),
		service.WithChartSize(cfg.ChartSize),
		service.WithChartTitle(cfg.ChartTitle),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	mode, err := svc.ResolveMode(f.mode)
	if err != nil {
		return err
	}

	reports, err := svc.EvaluateFiles(ctx, paths, mode, f.position)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		if err := writeJSONReports(out, reports); err != nil {
			return err
		}
	} else {
		r := newRenderer(out, g.colorEnabled(out))
		for _, fr := range reports {
			r.fileReport(fr)
		}
	}

	failed := false
	for _, fr := range reports {
		if fr.Err != nil {
			failed = true
			continue
		}
		prefix := outputPrefix(fr.Path, len(reports))
		if format != "" {
			if err := writeExport(ctx, svc, f.outDir, prefix, fr.Report, format); err != nil {
				return err
			}
		}
		if f.chart {
			if err := writeChart(ctx, svc, f.outDir, prefix, fr.Report); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "chart for %s skipped: %s\n", fr.Path, err)
			}
		}
	}
	if failed {
		return ErrEvaluationFailed
	}
	return nil
}

// outputPrefix keeps exports of several inputs apart by naming them after
// their source file.
func outputPrefix(path string, total int) string {
	if total <= 1 {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_"
}

func writeExport(ctx context.Context, svc *service.Service, dir, prefix string, report service.Report, format tabular.Format) error {
	return writeFile(filepath.Join(dir, prefix+format.FileName()), func(w io.Writer) error {
		return svc.Export(ctx, w, report, format)
	})
}

func writeChart(ctx context.Context, svc *service.Service, dir, prefix string, report service.Report) error {
	return writeFile(filepath.Join(dir, prefix+chartFileName), func(w io.Writer) error {
		return svc.Chart(ctx, w, report)
	})
}

// writeFile creates path and fills it with write. A failed write removes
// the partial file.
func writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // operator-chosen output path
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(f)
}

func writeJSONReports(w io.Writer, reports []service.FileReport) error {
	type fileJSON struct {
		Path   string          `json:"path"`
		Report *service.Report `json:"report,omitempty"`
		Error  string          `json:"error,omitempty"`
	}
	out := make([]fileJSON, len(reports))
	for i, fr := range reports {
		out[i].Path = fr.Path
		if fr.Err == nil || errors.Is(fr.Err, service.ErrZeroTotalWeight) {
			out[i].Report = &reports[i].Report
		}
		if fr.Err != nil {
			out[i].Error = fr.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
