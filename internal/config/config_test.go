package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/pirouette/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Database.Driver, convey.ShouldEqual, "memory")
			convey.So(cfg.Schedule.Policy, convey.ShouldEqual, "age-first")
			convey.So(cfg.Scoring.OpenStyle, convey.ShouldEqual, "Show Dance")
			convey.So(cfg.Diplomas.Workers, convey.ShouldBeGreaterThan, 0)
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 10*time.Second)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(config.Validate(cfg), convey.ShouldBeNil)
		})

		convey.Convey("Then no reference date is fixed", func() {
			convey.So(cfg.ReferenceTime().IsZero(), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_ReferenceTime(t *testing.T) {
	convey.Convey("Given a fixed reference date", t, func() {
		cfg := config.New(context.Background())
		cfg.Registration.ReferenceDate = "2024-05-01"

		convey.So(cfg.ReferenceTime(), convey.ShouldEqual, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	})
}
