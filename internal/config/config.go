// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/wardenhq/warden/internal/credential"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// DatabaseURLEnv overrides storage.database_url.
const DatabaseURLEnv = "DATABASE_URL"

// Config is the complete warden configuration.
type Config struct {
	HTTP       HTTPConfig       `koanf:"http" json:"http,omitempty"`
	Metrics    MetricsConfig    `koanf:"metrics" json:"metrics,omitempty"`
	Log        LogConfig        `koanf:"log" json:"log,omitempty"`
	Storage    StorageConfig    `koanf:"storage" json:"storage,omitempty"`
	Credential CredentialConfig `koanf:"credential" json:"credential,omitempty"`
}

// HTTPConfig configures the account API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty" jsonschema:"minLength=1,description=account API listen address"`
}

// MetricsConfig configures the metrics and health listener.
type MetricsConfig struct {
	// Addr is the listen address. Empty disables the listener.
	Addr string `koanf:"addr" json:"addr,omitempty" jsonschema:"description=metrics/health listen address; empty disables"`
}

// LogConfig configures logging.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
}

// StorageConfig selects and configures the identity repository.
type StorageConfig struct {
	Driver          string `koanf:"driver" json:"driver,omitempty" jsonschema:"enum=memory,enum=postgres"`
	DatabaseURL     string `koanf:"database_url" json:"database_url,omitempty"`
	ConnectAttempts int    `koanf:"connect_attempts" json:"connect_attempts,omitempty" jsonschema:"minimum=1,maximum=100"`
}

// CredentialConfig configures the password strength policy. The scrypt cost
// is not configurable: stored credentials do not record it, so it must stay
// fixed for them to verify.
type CredentialConfig struct {
	Policy credential.Policy `koanf:"policy" json:"policy,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP:    HTTPConfig{Addr: ":3000"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Log:     LogConfig{Format: "json"},
		Storage: StorageConfig{
			Driver:          DriverMemory,
			ConnectAttempts: 5,
		},
		Credential: CredentialConfig{
			Policy: credential.DefaultPolicy(),
		},
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"http-addr":        "http.addr",
	"metrics-addr":     "metrics.addr",
	"log-format":       "log.format",
	"storage-driver":   "storage.driver",
	"database-url":     "storage.database_url",
	"connect-attempts": "storage.connect_attempts",
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("http-addr", d.HTTP.Addr, "account API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("storage-driver", d.Storage.Driver, "identity storage (memory or postgres)")
	fs.String("database-url", "", "PostgreSQL connection URL (default: $"+DatabaseURLEnv+")")
	fs.Int("connect-attempts", d.Storage.ConnectAttempts, "database connection attempts")
}

// Load builds the configuration from defaults, the YAML file at path (if
// non-empty) and flags (if non-nil), then validates it.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateYAML(data); err != nil {
			return nil, oops.With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		// Unchanged flags only fill keys the file left unset.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}

	if url := os.Getenv(DatabaseURLEnv); url != "" && !flagChanged(flags, "database-url") {
		if err := k.Set("storage.database_url", url); err != nil {
			return nil, oops.Code("CONFIG_ENV_INVALID").With("env", DatabaseURLEnv).Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func flagChanged(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// Validate checks ranges and cross-field requirements.
func (c *Config) Validate() error {
	invalid := func(key, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
	}

	if c.HTTP.Addr == "" {
		return invalid("http.addr", "http.addr is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "log.format must be 'json' or 'text', got %q", c.Log.Format)
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return invalid("storage.database_url", "storage.database_url (or $%s) is required for the postgres driver", DatabaseURLEnv)
		}
	default:
		return invalid("storage.driver", "storage.driver must be %q or %q, got %q", DriverMemory, DriverPostgres, c.Storage.Driver)
	}
	if c.Storage.ConnectAttempts < 1 {
		return invalid("storage.connect_attempts", "storage.connect_attempts must be at least 1")
	}

	pol := c.Credential.Policy
	if pol.MinLength < 1 {
		return invalid("credential.policy.min_length", "credential.policy.min_length must be at least 1")
	}
	if pol.MinUpper < 0 || pol.MinLower < 0 || pol.MinDigits < 0 || pol.MinSymbols < 0 {
		return invalid("credential.policy", "credential.policy minimums must not be negative")
	}
	return nil
}

// Scheme builds the credential scheme described by the configuration.
// Derivation always uses credential.DefaultParams; extra options are applied
// last and exist for tests.
func (c *Config) Scheme(extra ...credential.Option) *credential.Scheme {
	opts := append([]credential.Option{credential.WithPolicy(c.Credential.Policy)}, extra...)
	return credential.NewScheme(opts...)
}
