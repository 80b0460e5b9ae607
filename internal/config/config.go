package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/dgramchunk/internal/logging"
)

// MaxUDPPayload is the largest payload a single IPv4 UDP datagram can carry.
const MaxUDPPayload = 65507

// Config is the resolved dgramctl configuration.
type Config struct {
	MaxDatagramSize int
	ListenAddr      string
	TargetAddr      string
	MetricsAddr     string
	WriteTimeout    time.Duration
	LogLevel        string
}

// fileConfig mirrors the toml layout on disk.
type fileConfig struct {
	MaxDatagramSize int    `toml:"max_datagram_size"`
	ListenAddr      string `toml:"listen_addr"`
	TargetAddr      string `toml:"target_addr"`
	MetricsAddr     string `toml:"metrics_addr"`
	WriteTimeout    string `toml:"write_timeout"`
	LogLevel        string `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		MaxDatagramSize: 1200,
		ListenAddr:      "127.0.0.1:7400",
		TargetAddr:      "127.0.0.1:7400",
		MetricsAddr:     "127.0.0.1:9400",
		WriteTimeout:    2 * time.Second,
		LogLevel:        "info",
	}
}

// Load reads path and overlays every key it defines onto DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("max_datagram_size") {
		cfg.MaxDatagramSize = raw.MaxDatagramSize
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("target_addr") {
		cfg.TargetAddr = strings.TrimSpace(raw.TargetAddr)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("write_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.WriteTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.WriteTimeout = d
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.MaxDatagramSize <= 0 || cfg.MaxDatagramSize > MaxUDPPayload {
		return fmt.Errorf("max_datagram_size must be in 1..%d, got %d", MaxUDPPayload, cfg.MaxDatagramSize)
	}
	if cfg.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if cfg.TargetAddr == "" {
		return fmt.Errorf("target_addr is required")
	}
	if cfg.MetricsAddr == "" {
		return fmt.Errorf("metrics_addr is required")
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not recognized", cfg.LogLevel)
	}
	return nil
}

func toFile(cfg Config) fileConfig {
	return fileConfig{
		MaxDatagramSize: cfg.MaxDatagramSize,
		ListenAddr:      cfg.ListenAddr,
		TargetAddr:      cfg.TargetAddr,
		MetricsAddr:     cfg.MetricsAddr,
		WriteTimeout:    cfg.WriteTimeout.String(),
		LogLevel:        cfg.LogLevel,
	}
}
