// Package config loads client settings from .logbook.yaml, the environment
// and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/logbook/pkg/search"
	"tableflip.dev/logbook/pkg/timeutil"
)

const (
	KeyServer        = "server"
	KeyToken         = "token"
	KeyPath          = "path"
	KeyWeekStart     = "week_start"
	KeyDebounce      = "debounce"
	KeyHeatmapWindow = "heatmap_window"
	KeyTimezone      = "timezone"
)

// Config is the resolved client configuration.
type Config struct {
	// Server is the REST base URL. Empty selects the local store at Path.
	Server string
	Token  string
	// Path is the local store directory, with ~ expanded.
	Path          string
	WeekStart     time.Weekday
	Debounce      time.Duration
	HeatmapWindow int
	Location      *time.Location
}

// BasePath implements store.Config.
func (c *Config) BasePath() string {
	return c.Path
}

// Remote reports whether the REST backend is configured.
func (c *Config) Remote() bool {
	return c.Server != ""
}

// New returns a viper instance with defaults, config search paths and the
// LOGBOOK_ environment prefix applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPath, "~/.logbook.db")
	v.SetDefault(KeyWeekStart, "sunday")
	v.SetDefault(KeyDebounce, search.DefaultDelay.String())
	v.SetDefault(KeyHeatmapWindow, timeutil.DefaultSpan)
	v.SetConfigName(".logbook") // .yaml is implicit
	v.SetEnvPrefix("LOGBOOK")
	v.AutomaticEnv()

	if override := os.Getenv("LOGBOOK_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	return v
}

// Load reads the config file, if any, and resolves every setting.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = New()
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}
	return Resolve(v)
}

// Resolve converts the raw viper values into a Config.
func Resolve(v *viper.Viper) (*Config, error) {
	path, err := homedir.Expand(v.GetString(KeyPath))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", KeyPath, err)
	}
	weekStart, err := timeutil.ParseWeekday(v.GetString(KeyWeekStart))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", KeyWeekStart, err)
	}
	if weekStart != time.Sunday && weekStart != time.Monday {
		return nil, fmt.Errorf("config: %s must be sunday or monday, got %s", KeyWeekStart, weekStart)
	}
	debounce, err := time.ParseDuration(v.GetString(KeyDebounce))
	if err != nil || debounce <= 0 {
		return nil, fmt.Errorf("config: %s: invalid duration %q", KeyDebounce, v.GetString(KeyDebounce))
	}
	window, _, err := timeutil.ParseSpan(v.GetString(KeyHeatmapWindow))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", KeyHeatmapWindow, err)
	}
	loc := time.Local
	if tz := v.GetString(KeyTimezone); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("config: %s: %w", KeyTimezone, err)
		}
	}
	return &Config{
		Server:        v.GetString(KeyServer),
		Token:         v.GetString(KeyToken),
		Path:          path,
		WeekStart:     weekStart,
		Debounce:      debounce,
		HeatmapWindow: window,
		Location:      loc,
	}, nil
}
