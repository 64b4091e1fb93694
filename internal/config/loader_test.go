package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/medalgrid/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"MEDALGRID_CONFIG",
	"MEDALGRID_ADDR",
	"MEDALGRID_DB_PATH",
	"MEDALGRID_SEED_COUNT",
	"MEDALGRID_MAX_READ_WINDOW",
	"MEDALGRID_ALLOWED_ORIGIN",
	"MEDALGRID_CLIENT_WORKERS",
	"MEDALGRID_SERVER_FILTER_VALUES",
	"MEDALGRID_LOG_LEVEL",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "medalgrid-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
				convey.So(cfg.SeedCount, convey.ShouldEqual, 1000)
				convey.So(cfg.ServerFilterValues, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MEDALGRID_ADDR", ":8080")
			_ = os.Setenv("MEDALGRID_DB_PATH", ":memory:")
			_ = os.Setenv("MEDALGRID_MAX_READ_WINDOW", "250")
			_ = os.Setenv("MEDALGRID_SERVER_FILTER_VALUES", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, ":memory:")
				convey.So(cfg.MaxReadWindow, convey.ShouldEqual, 250)
				convey.So(cfg.ServerFilterValues, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
seed_count: 50
allowed_origin: "http://localhost:4200"
client_workers: 8
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("MEDALGRID_CONFIG", tmpFile)
			_ = os.Setenv("MEDALGRID_CLIENT_WORKERS", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SeedCount, convey.ShouldEqual, 50)
				convey.So(cfg.AllowedOrigin, convey.ShouldEqual, "http://localhost:4200")
				convey.So(cfg.ClientWorkers, convey.ShouldEqual, 2)
				convey.So(cfg.MaxReadWindow, convey.ShouldEqual, 1000)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("MEDALGRID_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("MEDALGRID_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("MEDALGRID_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a negative seed count", func() {
			_ = os.Setenv("MEDALGRID_SEED_COUNT", "-1")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
