// Package config loads knolcard settings from, in increasing precedence,
// flag defaults, an optional YAML file, KNOLCARD_* environment variables
// and explicitly set command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load.
// Nested keys use a double underscore, e.g. KNOLCARD_ENGINE__HISTORY_LIMIT.
const EnvPrefix = "KNOLCARD_"

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Engine   EngineConfig   `koanf:"engine"`
	Import   ImportConfig   `koanf:"import"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=text json"`
}

// EngineConfig caps the number of rows read by the scheduling engine.
type EngineConfig struct {
	HistoryLimit int `koanf:"history_limit" validate:"gte=1,lte=10000"`
	DueScanLimit int `koanf:"due_scan_limit" validate:"gte=1,lte=100000"`
}

// ImportConfig configures markdown imports.
type ImportConfig struct {
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"db":             "database.path",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"history-limit":  "engine.history_limit",
	"due-scan-limit": "engine.due_scan_limit",
	"repos-dir":      "import.repos_dir",
}

// Flags returns a flag set with every configuration flag and its default.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "Path to a YAML configuration file")
	fs.String("db", "knolcard.db", "Path to the SQLite database file")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("log-format", "text", "Log format: text or json")
	fs.Int("history-limit", 100, "Maximum number of history entries returned per card")
	fs.Int("due-scan-limit", 1000, "Maximum number of due cards examined when picking the next card")
	fs.String("repos-dir", "repos", "Directory where imported git repositories are cloned")
	return fs
}

// Load builds a Config from a parsed flag set created by Flags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	path, err := fs.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read config flag: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Unchanged flags only fill keys that are still unset, so their defaults
	// never override the file or the environment.
	if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagKey(fs)), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field constraint of cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// flagKey renames flags to configuration keys. Flags that are not settings,
// such as --config, map to an empty key and are skipped.
func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(fs, f)
	}
}
