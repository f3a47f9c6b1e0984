package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/mapty/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "127.0.0.1:9080")
				convey.So(cfg.StorageKey, convey.ShouldEqual, "workouts")
				convey.So(cfg.MapZoom, convey.ShouldEqual, 13)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MAPTY_ADDR", ":8080")
			_ = os.Setenv("MAPTY_DATA_DIR", "/tmp/mapty")
			_ = os.Setenv("MAPTY_MAP_ZOOM", "15")
			_ = os.Setenv("MAPTY_FOCUS_PAN_SECONDS", "0.5")
			_ = os.Setenv("MAPTY_EVENT_QUEUE_SIZE", "64")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/tmp/mapty")
				convey.So(cfg.MapZoom, convey.ShouldEqual, 15)
				convey.So(cfg.FocusPanSeconds, convey.ShouldEqual, 0.5)
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
data_dir: "/var/lib/mapty"
storage_key: "runs"
map_zoom: 12
log_format: json
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MAPTY_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/var/lib/mapty")
				convey.So(cfg.StorageKey, convey.ShouldEqual, "runs")
				convey.So(cfg.MapZoom, convey.ShouldEqual, 12)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.EventTimeoutMS, convey.ShouldEqual, 5000) // default
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
map_zoom: 12
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MAPTY_CONFIG", tmpFile)
			_ = os.Setenv("MAPTY_MAP_ZOOM", "16")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090") // from file
				convey.So(cfg.MapZoom, convey.ShouldEqual, 16)   // from env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MAPTY_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("MAPTY_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("MAPTY_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When loading config with an out of range zoom", func() {
			_ = os.Setenv("MAPTY_MAP_ZOOM", "25")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "map_zoom")
			})
		})

		convey.Convey("When the storage key would escape the data dir", func() {
			_ = os.Setenv("MAPTY_STORAGE_KEY", "../workouts")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When metrics are configured through the environment", func() {
			_ = os.Setenv("MAPTY_METRICS_ENABLED", "false")
			_ = os.Setenv("MAPTY_METRICS_REFRESH_SECONDS", "2.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then recording is off and the refresh interval follows", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 2500*time.Millisecond)
			})
		})

		convey.Convey("When the metrics refresh interval is not positive", func() {
			_ = os.Setenv("MAPTY_METRICS_REFRESH_SECONDS", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_refresh_seconds")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("MAPTY_EVENT_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(cctx)

			convey.Convey("Then loading is skipped", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"MAPTY_CONFIG",
		"MAPTY_ADDR",
		"MAPTY_LOG_LEVEL",
		"MAPTY_LOG_FORMAT",
		"MAPTY_DATA_DIR",
		"MAPTY_STORAGE_KEY",
		"MAPTY_MAP_ZOOM",
		"MAPTY_FOCUS_PAN_SECONDS",
		"MAPTY_EVENT_QUEUE_SIZE",
		"MAPTY_EVENT_TIMEOUT_MS",
		"MAPTY_METRICS_ENABLED",
		"MAPTY_METRICS_REFRESH_SECONDS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "mapty-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
