package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	samplePositions = []string{"Manager", "Supervisor", "Staff"}
	sampleMetrics   = []string{"Pendapatan", "Biaya Operasional", "Kepuasan Pelanggan", "Keluhan", "Ketepatan Waktu", "Produktivitas", "Kehadiran", "Insiden"}
	sampleHeader    = []string{"NAMA KPI", "BOBOT", "TARGET TW TERKAIT", "REALISASI TW TERKAIT", "POLARITAS", "JABATAN"}
)

type sampleFlags struct {
	rows   int
	output string
	seed   uint64
}

func newSampleCommand() *cobra.Command {
	var f sampleFlags

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic KPI sheet for demos and testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.rows < 1 {
				return errors.New("--rows must be at least 1")
			}
			if f.output == "" || f.output == "-" {
				return writeSample(cmd.OutOrStdout(), f)
			}
			return writeFile(f.output, func(w io.Writer) error {
				return writeSample(w, f)
			})
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.rows, "rows", len(sampleMetrics), "number of KPI rows per position")
	fl.StringVarP(&f.output, "output", "o", "-", "output CSV file, - for stdout")
	fl.Uint64Var(&f.seed, "seed", 0, "random seed, 0 picks one")
	return cmd
}

// writeSample writes rows KPIs for every sample position. Weights within a
// position add up to 100 and every fifth KPI has negative polarity.
func writeSample(w io.Writer, f sampleFlags) error {
	seed := f.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}
	for _, pos := range samplePositions {
		weights := splitHundred(rng, f.rows)
		for i := range f.rows {
			polarity := "Positif"
			if i%5 == 4 {
				polarity = "Negatif"
			}
			target := float64(50 + rng.IntN(451))
			realization := target * (0.7 + rng.Float64()*0.5)
			name := fmt.Sprintf("%s %s", sampleMetrics[i%len(sampleMetrics)], uuid.NewString()[:8])

			rec := []string{
				name,
				strconv.Itoa(weights[i]),
				strconv.FormatFloat(target, 'f', 0, 64),
				strconv.FormatFloat(realization, 'f', 1, 64),
				polarity,
				pos,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// splitHundred returns n positive integer weights summing to 100, or ones
// when n exceeds 100.
func splitHundred(rng *rand.Rand, n int) []int {
	out := make([]int, n)
	if n >= 100 {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	remaining := 100
	for i := range n - 1 {
		left := n - i - 1
		maxShare := remaining - left
		share := 1 + rng.IntN(max(1, min(maxShare, 2*remaining/(left+1))))
		out[i] = share
		remaining -= share
	}
	out[n-1] = remaining
	return out
}

