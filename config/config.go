// Package config loads the palletizer settings.
//
// Values are layered: Default, then an optional TOML file, then a .env
// file, then AUTOPALLET_* environment variables. Command-line flags are
// applied on top by the cli package.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"autoPallet/engine"
	"autoPallet/errs"
	"autoPallet/stacker"
)

const EnvPrefix = "AUTOPALLET_"

type Config struct {
	HTTPAddr  string `toml:"http_addr"`
	DBPath    string `toml:"db_path"`
	OutputDir string `toml:"output_dir"`

	MaxItemsPerLayer    int           `toml:"max_items_per_layer"`
	SupportSurfaceRatio float64       `toml:"support_surface_ratio"`
	NumberOfDecimals    int           `toml:"number_of_decimals"`
	SolveTimeout        time.Duration `toml:"solve_timeout"`

	LogLevel string `toml:"log_level"`
}

func Default() Config {
	return Config{
		HTTPAddr:            ":8080",
		DBPath:              "autopallet.db",
		OutputDir:           "output",
		MaxItemsPerLayer:    stacker.DefaultMaxItemsPerLayer,
		SupportSurfaceRatio: 0.75,
		NumberOfDecimals:    0,
		LogLevel:            "info",
	}
}

// Load builds a Config. tomlPath is optional but must exist when given;
// a missing envFile is ignored.
func Load(tomlPath, envFile string) (Config, error) {
	cfg := Default()

	if tomlPath != "" {
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil {
			return Config{}, errs.Wrap(errs.CodeInvalidInput, err, "read config %s", tomlPath)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, errs.Wrap(errs.CodeInvalidInput, err, "read env file %s", envFile)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var problems []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				problems = append(problems, errs.Invalid(EnvPrefix+key, "%q is not an integer", v))
				return
			}
			*dst = n
		}
	}

	str("HTTP_ADDR", &c.HTTPAddr)
	str("DB_PATH", &c.DBPath)
	str("OUTPUT_DIR", &c.OutputDir)
	str("LOG_LEVEL", &c.LogLevel)
	integer("MAX_ITEMS_PER_LAYER", &c.MaxItemsPerLayer)
	integer("NUMBER_OF_DECIMALS", &c.NumberOfDecimals)

	if v, ok := os.LookupEnv(EnvPrefix + "SUPPORT_SURFACE_RATIO"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			problems = append(problems, errs.Invalid(EnvPrefix+"SUPPORT_SURFACE_RATIO", "%q is not a number", v))
		} else {
			c.SupportSurfaceRatio = f
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SOLVE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			problems = append(problems, errs.Invalid(EnvPrefix+"SOLVE_TIMEOUT", "%q is not a duration", v))
		} else {
			c.SolveTimeout = d
		}
	}
	return errors.Join(problems...)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []error
	if c.MaxItemsPerLayer <= 0 {
		problems = append(problems, errs.Invalid("max_items_per_layer", "must be positive, got %d", c.MaxItemsPerLayer))
	}
	if c.SupportSurfaceRatio <= 0 || c.SupportSurfaceRatio > 1 {
		problems = append(problems, errs.Invalid("support_surface_ratio", "must be in (0, 1], got %v", c.SupportSurfaceRatio))
	}
	if c.NumberOfDecimals < 0 {
		problems = append(problems, errs.Invalid("number_of_decimals", "must not be negative, got %d", c.NumberOfDecimals))
	}
	if c.SolveTimeout < 0 {
		problems = append(problems, errs.Invalid("solve_timeout", "must not be negative, got %s", c.SolveTimeout))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, errs.Invalid("log_level", "unknown level %q", c.LogLevel))
	}
	return errors.Join(problems...)
}

// EngineConfig is the packer profile these settings describe.
func (c Config) EngineConfig() engine.Config {
	ec := engine.DefaultConfig()
	ec.SupportSurfaceRatio = c.SupportSurfaceRatio
	ec.NumberOfDecimals = c.NumberOfDecimals
	ec.Timeout = c.SolveTimeout
	return ec
}

// StackerOptions wires the settings into a stacker run.
func (c Config) StackerOptions() stacker.Options {
	opts := stacker.DefaultOptions()
	opts.EngineConfig = c.EngineConfig()
	opts.MaxItemsPerLayer = c.MaxItemsPerLayer
	return opts
}
