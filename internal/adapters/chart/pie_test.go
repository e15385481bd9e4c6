package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/kpieval/internal/domain/scoring"
)

func batchOf(scores map[string]float64, order ...string) scoring.BatchResult {
	var b scoring.BatchResult
	for _, name := range order {
		b.Rows = append(b.Rows, scoring.RowResult{
			Row:           scoring.Row{Name: name},
			WeightedScore: scores[name],
		})
	}
	return b
}

func TestSlices(t *testing.T) {
	Convey("Given rows with positive, zero and negative weighted scores", t, func() {
		b := batchOf(map[string]float64{"A": 30, "B": 0, "C": 10, "D": -5}, "A", "B", "C", "D")

		Convey("Then only positive rows become slices, in row order", func() {
			s := Slices(b)
			So(s, ShouldHaveLength, 2)
			So(s[0].Label, ShouldEqual, "A")
			So(s[0].Share, ShouldAlmostEqual, 75.0)
			So(s[1].Label, ShouldEqual, "C")
			So(s[1].Share, ShouldAlmostEqual, 25.0)
		})
	})
}

func TestRender(t *testing.T) {
	Convey("Given a pie renderer", t, func() {
		p := NewPie(WithSize(320, 320), WithTitle("test"))

		Convey("When rendering a batch with positive scores", func() {
			var buf bytes.Buffer
			err := p.Render(&buf, batchOf(map[string]float64{"A": 44, "B": 28.5, "C": 24}, "A", "B", "C"))

			Convey("Then a PNG of the requested size is produced", func() {
				So(err, ShouldBeNil)
				cfg, err := png.DecodeConfig(&buf)
				So(err, ShouldBeNil)
				So(cfg.Width, ShouldEqual, 320)
				So(cfg.Height, ShouldEqual, 320)
			})
		})

		Convey("When nothing is positive", func() {
			var buf bytes.Buffer
			err := p.Render(&buf, batchOf(map[string]float64{"A": 0}, "A"))

			So(errors.Is(err, ErrNoChartData), ShouldBeTrue)
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}
