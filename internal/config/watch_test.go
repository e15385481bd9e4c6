package config_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/kpieval/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigWatch(t *testing.T) {
	convey.Convey("Given a watched config file", t, func() {
		clearConfigEnvVars()
		path := createTempConfigFile(t, "log_level: info\n")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes := make(chan *config.Config, 4)
		done := make(chan error, 1)
		go func() {
			done <- config.Watch(ctx, path, func(c *config.Config) { changes <- c }, func(error) {})
		}()
		// Give the watcher time to register before writing.
		time.Sleep(100 * time.Millisecond)

		convey.Convey("When the file is rewritten", func() {
			convey.So(os.WriteFile(path, []byte("log_level: debug\n"), 0o600), convey.ShouldBeNil)

			convey.Convey("Then onChange receives the new config", func() {
				select {
				case c := <-changes:
					convey.So(c.LogLevel, convey.ShouldEqual, "debug")
				case <-time.After(3 * time.Second):
					convey.So("timed out waiting for reload", convey.ShouldBeEmpty)
				}
				cancel()
				convey.So(<-done, convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given an empty path", t, func() {
		convey.Convey("Then Watch refuses to start", func() {
			err := config.Watch(context.Background(), "", func(*config.Config) {}, func(error) {})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
