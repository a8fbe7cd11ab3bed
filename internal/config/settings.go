package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Default locations, relative to the working directory of the run.
const (
	DefaultAPIConfig    = "./config/api.json"
	DefaultAssetConfig  = "./config/asset.json"
	DefaultOutputConfig = "./config/output_data_location.json"
	DefaultExecutable   = "./components/rust_data_fetcher/target/release/data_fetcher"
)

// EnvPrefix namespaces the environment overrides for Settings.
const EnvPrefix = "MARKETFETCH"

// Settings holds the runtime options of the orchestrator: where the three
// configuration files live, which executable to drive and how to pace it.
type Settings struct {
	APIConfig    string        `mapstructure:"api_config"`
	AssetConfig  string        `mapstructure:"asset_config"`
	OutputConfig string        `mapstructure:"output_config"`
	Executable   string        `mapstructure:"executable"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MinInterval  time.Duration `mapstructure:"min_interval"`
	LogLevel     string        `mapstructure:"log_level"`
}

// flag name -> settings key
var settingsFlags = map[string]string{
	"api-config":    "api_config",
	"asset-config":  "asset_config",
	"output-config": "output_config",
	"executable":    "executable",
	"fetch-timeout": "fetch_timeout",
	"min-interval":  "min_interval",
	"log-level":     "log_level",
}

// NewFlagSet defines the orchestrator flags on a fresh flag set.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("api-config", DefaultAPIConfig, "path to the API credential config")
	fs.String("asset-config", DefaultAssetConfig, "path to the asset list config")
	fs.String("output-config", DefaultOutputConfig, "path to the output location config")
	fs.String("executable", DefaultExecutable, "path to the per-symbol fetch executable")
	fs.Duration("fetch-timeout", 0, "kill a fetch that runs longer than this (0 disables)")
	fs.Duration("min-interval", 0, "minimum delay between fetch starts (0 disables)")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	return fs
}

// LoadSettings resolves Settings from a parsed flag set. Environment variables
// named MARKETFETCH_<KEY> take precedence over flag defaults but not over flags
// given explicitly.
func LoadSettings(fs *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for flagName, key := range settingsFlags {
		f := fs.Lookup(flagName)
		if f == nil {
			return nil, fmt.Errorf("flag --%s is not defined", flagName)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", flagName, err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that every setting is usable.
func (s *Settings) Validate() error {
	var problems []string
	if s.APIConfig == "" {
		problems = append(problems, "api config path is empty")
	}
	if s.AssetConfig == "" {
		problems = append(problems, "asset config path is empty")
	}
	if s.OutputConfig == "" {
		problems = append(problems, "output config path is empty")
	}
	if s.Executable == "" {
		problems = append(problems, "executable path is empty")
	}
	if s.FetchTimeout < 0 {
		problems = append(problems, "fetch timeout is negative")
	}
	if s.MinInterval < 0 {
		problems = append(problems, "min interval is negative")
	}
	if _, err := s.Level(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(problems, ", "))
	}
	return nil
}

// Level parses LogLevel.
func (s *Settings) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s.LogLevel)
	}
	return lvl, nil
}
