package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/kpieval/internal/config"
	"github.com/okian/kpieval/pkg/logger"
)

func TestNewMux(t *testing.T) {
	convey.Convey("Given the assembled server mux", t, func() {
		convey.So(logger.InitWithWriter(io.Discard), convey.ShouldBeNil)
		ctx := context.Background()
		cfg := config.New()

		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, cfg, svc)

		convey.Convey("Then every surface is routed", func() {
			for path, want := range map[string]string{
				"/":             "text/html",
				"/api-docs":     "text/html",
				"/openapi.yaml": "application/yaml",
				"/healthz":      "text/plain",
				"/stats":        "application/json",
			} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldContainSubstring, want)
			}
		})

		convey.Convey("And evaluation goes through the configured service", func() {
			body := `{"rows":[{"name":"A","weight":100,"target":100,"realization":120,"polarity":"positif"}]}`
			req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"category":"ISTIMEWA"`)
		})
	})
}

func TestApplyLogLevel(t *testing.T) {
	convey.Convey("An invalid level falls back without panicking", t, func() {
		convey.So(logger.InitWithWriter(io.Discard), convey.ShouldBeNil)
		convey.So(func() {
			applyLogLevel(context.Background(), logger.Get(), "loud")
		}, convey.ShouldNotPanic)
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("System metrics update without panicking", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
	})
}
