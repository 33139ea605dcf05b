package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/delta-derivatives/go-audit/internal/audit"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// #region config
// Config is the process-level configuration shared by every binary.
type Config struct {
	Audit  audit.Config `yaml:"audit"`
	Scale  float64      `yaml:"scale"` // sample-size factor applied to Audit.Gate
	Store  StoreConfig  `yaml:"store"`
	Report ReportConfig `yaml:"report"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// StoreConfig locates the run-history database. An empty path disables
// persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

type ReportConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the full-size audit, no persistence and info logging.
func Default() Config {
	return Config{
		Audit:  audit.DefaultConfig(),
		Scale:  1.0,
		Report: ReportConfig{Path: "audit_report.json"},
		Server: ServerConfig{
			GRPCAddr:    "localhost:50061",
			MetricsAddr: ":9464",
		},
		Log: LogConfig{Level: "info"},
	}
}
// #endregion config

// #region load
// Load reads the optional YAML file at path over Default(), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DELTA_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Store.Path = envOr("DELTA_DB", c.Store.Path)
	c.Report.Path = envOr("DELTA_REPORT", c.Report.Path)
	c.Server.GRPCAddr = envOr("DELTA_GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MetricsAddr = envOr("DELTA_METRICS_ADDR", c.Server.MetricsAddr)
	c.Log.Level = envOr("DELTA_LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("DELTA_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: DELTA_SEED %q: %v", ErrInvalidConfig, v, err)
		}
		c.Audit.Seed = seed
	}
	return nil
}
// #endregion load

// #region validate
func (c Config) Validate() error {
	if c.Scale <= 0 || math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidConfig, c.Scale)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Audit.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.EffectiveAudit().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
// #endregion validate

// #region derived
// EffectiveAudit returns the audit config with Scale applied to its gate
// sample sizes.
func (c Config) EffectiveAudit() audit.Config {
	out := c.Audit
	if c.Scale != 1 {
		out.Gate = out.Gate.Scaled(c.Scale)
	}
	return out
}

// Logger builds a text slog logger at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}
// #endregion derived

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
