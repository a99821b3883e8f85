// Package config loads UPSHOT configuration from upshot.yaml and UPSHOT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/example/upshot/internal/core/names"
	"github.com/example/upshot/internal/core/syllabus"
	"github.com/example/upshot/internal/models"
)

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Matcher  MatcherConfig  `mapstructure:"matcher"`
}

// DatabaseConfig locates the SQLite store. An empty path means ~/.upshot/upshot.db.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig selects log level and encoding ("console" or "json").
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig mirrors models.EngineConfig in file form.
type EngineConfig struct {
	UseRoundedTrainingStartDate bool                      `mapstructure:"use_rounded_training_start_date"`
	Concurrency                 int                       `mapstructure:"concurrency"`
	Positions                   map[string]PositionConfig `mapstructure:"positions"`
}

// PositionConfig configures one position. Deadlines are keyed by level.
type PositionConfig struct {
	UseDerivedLevels *bool                  `mapstructure:"use_derived_levels"`
	Deadlines        map[string]CurveConfig `mapstructure:"deadlines"`
}

// CurveConfig is one target/deadline pair in months.
type CurveConfig struct {
	TargetMonths   int `mapstructure:"target_months"`
	DeadlineMonths int `mapstructure:"deadline_months"`
}

// MatcherConfig tunes the name resolver.
type MatcherConfig struct {
	Threshold      float64 `mapstructure:"threshold"`
	BoostThreshold float64 `mapstructure:"boost_threshold"`
	PrefixScale    float64 `mapstructure:"prefix_scale"`
	MaxPrefix      int     `mapstructure:"max_prefix"`
}

// FileName is the config file name searched for when no path is given.
const FileName = "upshot"

// Load reads configuration with precedence env > file > defaults.
// A missing config file is not an error when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := names.DefaultOptions()
	v.SetDefault("db.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("engine.use_rounded_training_start_date", true)
	v.SetDefault("engine.concurrency", 4)
	v.SetDefault("matcher.threshold", defaults.Threshold)
	v.SetDefault("matcher.boost_threshold", defaults.BoostThreshold)
	v.SetDefault("matcher.prefix_scale", defaults.PrefixScale)
	v.SetDefault("matcher.max_prefix", defaults.MaxPrefix)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".upshot"))
		}
	}

	v.SetEnvPrefix("UPSHOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the engine and adapters depend on.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid config: log.format must be console or json, got %q", c.Log.Format)
	}
	if c.Engine.Concurrency < 1 {
		return fmt.Errorf("invalid config: engine.concurrency must be at least 1")
	}
	if c.Matcher.Threshold <= 0 || c.Matcher.Threshold > 1 {
		return fmt.Errorf("invalid config: matcher.threshold must be in (0, 1]")
	}
	if c.Matcher.BoostThreshold < 0 || c.Matcher.BoostThreshold > 1 {
		return fmt.Errorf("invalid config: matcher.boost_threshold must be in [0, 1]")
	}
	if c.Matcher.PrefixScale < 0 || c.Matcher.PrefixScale > 0.25 {
		return fmt.Errorf("invalid config: matcher.prefix_scale must be in [0, 0.25]")
	}
	if c.Matcher.MaxPrefix < 0 {
		return fmt.Errorf("invalid config: matcher.max_prefix must not be negative")
	}
	if _, err := c.Engine.positions(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ToEngineConfig converts the file form into the engine configuration.
// Without any configured position the built-in defaults apply.
func (c *Config) ToEngineConfig() models.EngineConfig {
	positions, err := c.Engine.positions()
	if err != nil || len(positions) == 0 {
		positions = DefaultPositions()
	}
	return models.EngineConfig{
		UseRoundedTrainingStartDate: c.Engine.UseRoundedTrainingStartDate,
		Positions:                   positions,
	}
}

// MatcherOptions converts the matcher section into resolver options.
func (c *Config) MatcherOptions() names.Options {
	return names.Options{
		Threshold:      c.Matcher.Threshold,
		BoostThreshold: c.Matcher.BoostThreshold,
		PrefixScale:    c.Matcher.PrefixScale,
		MaxPrefix:      c.Matcher.MaxPrefix,
	}
}

func (e EngineConfig) positions() (map[string]models.PositionSettings, error) {
	out := make(map[string]models.PositionSettings, len(e.Positions))

	keys := make([]string, 0, len(e.Positions))
	for k := range e.Positions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		pc := e.Positions[name]
		ps := models.PositionSettings{
			UseDerivedLevels: pc.UseDerivedLevels == nil || *pc.UseDerivedLevels,
			Deadlines:        make(map[int]models.Curve, len(pc.Deadlines)),
		}
		for rawLevel, cc := range pc.Deadlines {
			level, err := strconv.Atoi(strings.TrimSpace(rawLevel))
			if err != nil || !syllabus.OnScale(level) {
				return nil, fmt.Errorf("engine.positions.%s: invalid level %q", name, rawLevel)
			}
			curve := models.Curve{TargetMonths: cc.TargetMonths, DeadlineMonths: cc.DeadlineMonths}
			if err := syllabus.CheckCurve(curve); err != nil {
				return nil, fmt.Errorf("engine.positions.%s.deadlines.%d: %w", name, level, err)
			}
			ps.Deadlines[level] = curve
		}
		out[strings.ToUpper(strings.TrimSpace(name))] = ps
	}
	return out, nil
}

// DefaultPositions returns the stock curves for the four aircrew positions.
func DefaultPositions() map[string]models.PositionSettings {
	return map[string]models.PositionSettings{
		"PILOT": {UseDerivedLevels: true, Deadlines: map[int]models.Curve{
			200: {TargetMonths: 6, DeadlineMonths: 12},
			300: {TargetMonths: 10, DeadlineMonths: 18},
			400: {TargetMonths: 12, DeadlineMonths: 24},
		}},
		"NFO": {UseDerivedLevels: true, Deadlines: map[int]models.Curve{
			200: {TargetMonths: 5, DeadlineMonths: 10},
			300: {TargetMonths: 9, DeadlineMonths: 16},
			400: {TargetMonths: 11, DeadlineMonths: 22},
		}},
		"AAW": {UseDerivedLevels: true, Deadlines: map[int]models.Curve{
			200: {TargetMonths: 7, DeadlineMonths: 14},
			300: {TargetMonths: 8, DeadlineMonths: 18},
		}},
		"EWO": {UseDerivedLevels: true, Deadlines: map[int]models.Curve{
			200: {TargetMonths: 6, DeadlineMonths: 13},
			300: {TargetMonths: 10, DeadlineMonths: 19},
		}},
	}
}

// DefaultFile renders a starter upshot.yaml with the built-in defaults.
func DefaultFile() string {
	var b strings.Builder
	b.WriteString("db:\n  path: \"\"\nlog:\n  level: info\n  format: console\n")
	b.WriteString("engine:\n  use_rounded_training_start_date: true\n  concurrency: 4\n  positions:\n")

	defaults := DefaultPositions()
	positions := make([]string, 0, len(defaults))
	for p := range defaults {
		positions = append(positions, p)
	}
	sort.Strings(positions)
	for _, p := range positions {
		ps := defaults[p]
		fmt.Fprintf(&b, "    %s:\n      use_derived_levels: %t\n      deadlines:\n", strings.ToLower(p), ps.UseDerivedLevels)
		levels := make([]int, 0, len(ps.Deadlines))
		for l := range ps.Deadlines {
			levels = append(levels, l)
		}
		sort.Ints(levels)
		for _, l := range levels {
			c := ps.Deadlines[l]
			fmt.Fprintf(&b, "        \"%d\": {target_months: %d, deadline_months: %d}\n", l, c.TargetMonths, c.DeadlineMonths)
		}
	}

	m := names.DefaultOptions()
	fmt.Fprintf(&b, "matcher:\n  threshold: %g\n  boost_threshold: %g\n  prefix_scale: %g\n  max_prefix: %d\n",
		m.Threshold, m.BoostThreshold, m.PrefixScale, m.MaxPrefix)
	return b.String()
}
