package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered under the kpi namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.rowsScored.Add(2)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["kpi_eval_rows_scored_total"], ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithScoreBuckets([]float64{80, 90, 100}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels follow the options", func() {
				manager.charts.Inc()
				So(testutil.ToFloat64(manager.charts), ShouldEqual, 1)
				n, err := testutil.GatherAndCount(registry, "test_unit_charts_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording evaluation metrics", func() {
			before := testutil.ToFloat64(globalManager.evaluations.WithLabelValues("polarity", "ok"))
			RecordEvaluation("polarity", "ok", 1.5)
			RecordRowsScored(3)
			RecordRowExcluded("missing_field")
			RecordFinalScore(96.5, "BAIK")
			RecordZeroWeightBatch()

			Convey("Then counters move", func() {
				So(testutil.ToFloat64(globalManager.evaluations.WithLabelValues("polarity", "ok")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.rowsExcluded.WithLabelValues("missing_field")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.categories.WithLabelValues("BAIK")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording output, worker, HTTP, error and system metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordExport("xlsx")
					RecordChart()
					UpdateWorkerActiveCount(2)
					RecordFileProcessed("ok")
					RecordHTTPRequest("evaluate", "POST", "200")
					RecordHTTPRequestDuration("evaluate", "POST", "200", 12)
					RecordUploadSize(2048)
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("evaluate", "POST", "client_error")
					RecordErrorLatency("http", "client_error", 3)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(10)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the custom registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global collectors rebuilt with custom options", t, func() {
		Configure(
			WithNamespace("acme"),
			WithSubsystem("kpi"),
			WithCustomLabels(map[string]string{"site": "jakarta"}),
			WithScoreBuckets([]float64{50, 100}),
			WithHistogramBuckets([]float64{1, 10, 100}),
		)
		defer Configure()

		Convey("Then recorded metrics land in the new registry under the new prefix", func() {
			So(Prefix(), ShouldEqual, "acme_kpi_")
			RecordChart()
			RecordFinalScore(96.5, "BAIK")

			n, err := testutil.GatherAndCount(GetRegistry(), "acme_kpi_charts_total", "acme_kpi_final_score")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			for _, f := range families {
				if f.GetName() == "acme_kpi_charts_total" {
					So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "jakarta")
				}
			}
		})
	})

	Convey("Given the default configuration", t, func() {
		Configure()

		Convey("Then the prefix is kpi_eval_", func() {
			So(Prefix(), ShouldEqual, "kpi_eval_")
		})
	})
}
