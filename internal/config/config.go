// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and the environment.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	Database     Database     `koanf:"database"`
	Redis        Redis        `koanf:"redis"`
	AMQP         AMQP         `koanf:"amqp"`
	Schedule     Schedule     `koanf:"schedule"`
	Scoring      Scoring      `koanf:"scoring"`
	Diplomas     Diplomas     `koanf:"diplomas"`
	Registration Registration `koanf:"registration"`
}

// Database selects the persistence backend.
type Database struct {
	// Driver is one of memory, postgres, mysql, sqlite.
	Driver string `koanf:"driver" validate:"oneof=memory postgres mysql sqlite"`
	DSN    string `koanf:"dsn" validate:"required_unless=Driver memory"`
	// Debug logs every query through bundebug.
	Debug bool `koanf:"debug"`
}

// Redis configures the highlight pointer cache. An empty Addr keeps the
// pointer in the primary store.
type Redis struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

// AMQP configures the notification publisher. An empty URL logs instead.
type AMQP struct {
	URL   string `koanf:"url"`
	Queue string `koanf:"queue" validate:"required_with=URL"`
}

// Schedule configures the default start-list sort policy.
type Schedule struct {
	// Policy is a preset name: age-first or difficulty-first.
	Policy string `koanf:"policy" validate:"oneof=age-first difficulty-first"`
	// Difficulty is asc (A first) or desc.
	Difficulty string `koanf:"difficulty" validate:"omitempty,oneof=asc desc"`
	// Styles lists style names in presentation order.
	Styles []string `koanf:"styles"`
}

// Scoring configures the aggregator.
type Scoring struct {
	// OpenStyle is the style whose entries also receive a show value.
	OpenStyle string `koanf:"open_style" validate:"required"`
}

// Diplomas configures certificate generation.
type Diplomas struct {
	Dir      string `koanf:"dir"`
	Workers  int    `koanf:"workers" validate:"gte=1,lte=64"`
	Template string `koanf:"template"`
}

// Registration configures age classification.
type Registration struct {
	// ReferenceDate fixes the as-of date (YYYY-MM-DD); empty means today.
	ReferenceDate string `koanf:"reference_date" validate:"omitempty,datetime=2006-01-02"`
}

// New creates a Config with defaults. The context is reserved for sources
// that need one.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		ShutdownTimeout: 10 * time.Second,
		Database: Database{
			Driver: "memory",
		},
		AMQP: AMQP{
			Queue: "pirouette.notifications",
		},
		Schedule: Schedule{
			Policy:     "age-first",
			Difficulty: "asc",
			Styles: []string{
				"Ballet", "Jazz", "Contemporary", "Hip Hop", "Tap", "Lyrical", "Acro", "Folk", "Show Dance",
			},
		},
		Scoring: Scoring{
			OpenStyle: "Show Dance",
		},
		Diplomas: Diplomas{
			Dir:     "diplomas",
			Workers: runtime.NumCPU(),
		},
	}
}

// ReferenceTime returns the configured as-of date, or zero when unset.
func (c *Config) ReferenceTime() time.Time {
	if c.Registration.ReferenceDate == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.DateOnly, c.Registration.ReferenceDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
