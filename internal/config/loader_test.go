package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/looplink/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.PollIntervalSeconds, convey.ShouldEqual, 30)
				convey.So(cfg.Transport, convey.ShouldEqual, config.TransportShortcut)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LOOPLINK_ADDR", ":8080")
			_ = os.Setenv("LOOPLINK_NIGHTSCOUT_URL", "https://cgm.example.com")
			_ = os.Setenv("LOOPLINK_TRANSPORT", "sms")
			_ = os.Setenv("LOOPLINK_POLL_INTERVAL_SECONDS", "15")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.NightscoutURL, convey.ShouldEqual, "https://cgm.example.com")
				convey.So(cfg.Transport, convey.ShouldEqual, config.TransportSMS)
				convey.So(cfg.PollIntervalSeconds, convey.ShouldEqual, 15)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
nightscout_url: "https://trio.example.com"
nightscout_token: "readable-token"
transport: "push"
caregiver_name: "Dana"
command_secret: "hunter2"
treatment_lookback_hours: 12
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LOOPLINK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.NightscoutURL, convey.ShouldEqual, "https://trio.example.com")
				convey.So(cfg.NightscoutToken, convey.ShouldEqual, "readable-token")
				convey.So(cfg.Transport, convey.ShouldEqual, config.TransportPush)
				convey.So(cfg.CaregiverName, convey.ShouldEqual, "Dana")
				convey.So(cfg.CommandSecret, convey.ShouldEqual, "hunter2")
				convey.So(cfg.TreatmentLookbackHours, convey.ShouldEqual, 12)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
transport: "push"
poll_interval_seconds: 60
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LOOPLINK_CONFIG", tmpFile)
			_ = os.Setenv("LOOPLINK_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")               // Overridden by env
				convey.So(cfg.Transport, convey.ShouldEqual, "push")           // From file
				convey.So(cfg.PollIntervalSeconds, convey.ShouldEqual, 60)     // From file
				convey.So(cfg.TreatmentLookbackHours, convey.ShouldEqual, 24)  // From defaults
			})
		})

		convey.Convey("When loading config with an unknown transport", func() {
			_ = os.Setenv("LOOPLINK_TRANSPORT", "carrier-pigeon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fall back to the shortcut transport", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Transport, convey.ShouldEqual, config.TransportShortcut)
			})
		})

		convey.Convey("When loading config with a mixed-case transport", func() {
			_ = os.Setenv("LOOPLINK_TRANSPORT", " SMS ")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should normalize the value", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Transport, convey.ShouldEqual, config.TransportSMS)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LOOPLINK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("LOOPLINK_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive poll interval", func() {
			_ = os.Setenv("LOOPLINK_POLL_INTERVAL_SECONDS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"LOOPLINK_CONFIG",
		"LOOPLINK_ADDR",
		"LOOPLINK_NIGHTSCOUT_URL",
		"LOOPLINK_NIGHTSCOUT_TOKEN",
		"LOOPLINK_TRANSPORT",
		"LOOPLINK_POLL_INTERVAL_SECONDS",
		"LOOPLINK_TREATMENT_LOOKBACK_HOURS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "looplink-config-*.yaml")
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
