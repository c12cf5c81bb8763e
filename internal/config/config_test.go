package config_test

import (
	"errors"
	"testing"

	"github.com/okian/persona/internal/config"
	"github.com/okian/persona/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the pipeline defaults", func() {
			convey.So(cfg.WindowSeconds, convey.ShouldEqual, 8)
			convey.So(cfg.ActionRetentionSeconds, convey.ShouldEqual, 16)
			convey.So(cfg.DetectIntervalSeconds, convey.ShouldEqual, 2)
			convey.So(cfg.CooldownSeconds, convey.ShouldEqual, 6)
			convey.So(cfg.RefreshIntervalSeconds, convey.ShouldEqual, 8)
			convey.So(cfg.SmoothingAlpha, convey.ShouldEqual, 0.1)
			convey.So(cfg.ActivationThreshold, convey.ShouldEqual, 0.25)
			convey.So(cfg.MinPositionSamples, convey.ShouldEqual, 4)
			convey.So(cfg.MinActionSamples, convey.ShouldEqual, 2)
			convey.So(cfg.ConfidenceRule, convey.ShouldEqual, config.ConfidenceAny)
			convey.So(cfg.MaxExpectedTimeSeconds, convey.ShouldEqual, 3600)
			convey.So(cfg.RareThresholds["Speedrunner"], convey.ShouldEqual, 0.8)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"zero window", func(c *config.Config) { c.WindowSeconds = 0 }},
			{"retention below window", func(c *config.Config) { c.ActionRetentionSeconds = 4 }},
			{"negative cooldown", func(c *config.Config) { c.CooldownSeconds = -1 }},
			{"alpha above one", func(c *config.Config) { c.SmoothingAlpha = 1.5 }},
			{"alpha zero", func(c *config.Config) { c.SmoothingAlpha = 0 }},
			{"threshold above one", func(c *config.Config) { c.ActivationThreshold = 2 }},
			{"unknown confidence rule", func(c *config.Config) { c.ConfidenceRule = "majority" }},
			{"unknown input", func(c *config.Config) { c.Input = "gamepad" }},
			{"one cluster", func(c *config.Config) { c.KMeansClusters = 1 }},
			{"empty log dir", func(c *config.Config) { c.LogDir = " " }},
			{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"bad persona rule", func(c *config.Config) {
				c.Personas = []scoring.Rule{{Persona: "Explorer", Factors: []scoring.Factor{{Terms: []scoring.Term{{Feature: "no_such_feature", Weight: 1}}}}}}
			}},
		}

		for _, tc := range cases {
			tc := tc
			convey.Convey("When "+tc.name, func() {
				tc.mutate(cfg)

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					err := cfg.Validate()
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}
