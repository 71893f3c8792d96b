// Package config loads patternfinder settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ezoic/vipattern/pkg/errors"
	"github.com/ezoic/vipattern/preprocessing"
)

// Environment variable names.
const (
	EnvBinSize  = "VIPATTERN_BIN_SIZE"
	EnvSeed     = "VIPATTERN_SEED"
	EnvWorkers  = "VIPATTERN_WORKERS"
	EnvLogLevel = "VIPATTERN_LOG_LEVEL"
	EnvRows     = "VIPATTERN_ROWS"
	EnvPlotDir  = "VIPATTERN_PLOT_DIR"
)

// Config holds the settings of one patternfinder run.
type Config struct {
	BinSize  int
	Seed     uint64
	Workers  int // 0 selects GOMAXPROCS
	LogLevel string
	Rows     int
	PlotDir  string // empty disables plotting
}

// Default returns the settings used when no variable is set.
func Default() *Config {
	return &Config{
		BinSize:  preprocessing.DefaultBinSize,
		Seed:     1,
		LogLevel: "info",
		Rows:     2000,
	}
}

// Load reads files into the environment (variables already set win), then
// builds a Config from the environment. Missing files are not an error;
// with no files, ".env" in the working directory is tried.
//
// Returns:
//   - *Config: defaults overridden by any variable that is set
//   - error: ValueError wrapped with the variable name when a value is malformed
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := Default()
	var err error
	if cfg.BinSize, err = intVar(EnvBinSize, cfg.BinSize); err != nil {
		return nil, err
	}
	if cfg.BinSize < 2 || cfg.BinSize%2 != 0 {
		return nil, errors.Wrap(
			errors.NewValueError("config.FromEnv", "bin size must be an even number >= 2"), EnvBinSize)
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, perr := strconv.ParseUint(v, 10, 64)
		if perr != nil {
			return nil, errors.Wrap(errors.NewValueError("config.FromEnv", "invalid seed "+strconv.Quote(v)), EnvSeed)
		}
		cfg.Seed = seed
	}
	if cfg.Workers, err = intVar(EnvWorkers, cfg.Workers); err != nil {
		return nil, err
	}
	if cfg.Rows, err = intVar(EnvRows, cfg.Rows); err != nil {
		return nil, err
	}
	if cfg.Rows < 0 {
		return nil, errors.Wrap(errors.NewValueError("config.FromEnv", "row count must not be negative"), EnvRows)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.PlotDir = os.Getenv(EnvPlotDir)
	return cfg, nil
}

func intVar(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errors.NewValueError("config.FromEnv", "invalid integer "+strconv.Quote(v)), key)
	}
	return n, nil
}
