// Package config loads the storefront client options from a config file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/pomerium/storefront/internal/credstore"
)

// EnvPrefix prefixes the environment variable bound to each option.
const EnvPrefix = "STOREFRONT_"

// Environments the client can run against.
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Options are the storefront client options.
type Options struct {
	// APIBaseURL is the base URL every API path is resolved against.
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url,omitempty"`
	// Environment is either development or production. Production requires
	// an https API.
	Environment string `mapstructure:"environment" yaml:"environment,omitempty"`

	// RequestTimeout bounds each catalog request attempt.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout,omitempty"`
	// AuthTimeout bounds each login, register, logout and refresh request.
	AuthTimeout time.Duration `mapstructure:"auth_timeout" yaml:"auth_timeout,omitempty"`
	// RefreshEnabled enables token refresh after the API rejects a token.
	// When disabled a rejected token logs the user out.
	RefreshEnabled bool `mapstructure:"refresh_enabled" yaml:"refresh_enabled,omitempty"`
	// InsecureSkipVerify disables TLS certificate verification. Only allowed
	// in development.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify,omitempty"`

	CatalogCacheTTL  time.Duration `mapstructure:"catalog_cache_ttl" yaml:"catalog_cache_ttl,omitempty"`
	CatalogCacheSize int           `mapstructure:"catalog_cache_size" yaml:"catalog_cache_size,omitempty"`

	// SecretBackend selects where the token is stored: auto, keyring, file
	// or memory.
	SecretBackend string `mapstructure:"secret_backend" yaml:"secret_backend,omitempty"`
	// DataDir holds the preferences file and, for the file backend, the
	// secrets.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir,omitempty"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level,omitempty"`
	// MetricsTextfile, if set, receives the client metrics in the
	// prometheus text format when a command exits.
	MetricsTextfile string `mapstructure:"metrics_textfile" yaml:"metrics_textfile,omitempty"`

	// ConnectivityCheckAddr is a host:port dialed to detect that the
	// network is down. Empty disables the check.
	ConnectivityCheckAddr     string        `mapstructure:"connectivity_check_addr" yaml:"connectivity_check_addr,omitempty"`
	ConnectivityCheckInterval time.Duration `mapstructure:"connectivity_check_interval" yaml:"connectivity_check_interval,omitempty"`

	viper *viper.Viper
}

var defaultOptions = Options{
	APIBaseURL:                "http://localhost:8080/api/v1",
	Environment:               EnvironmentDevelopment,
	RequestTimeout:            30 * time.Second,
	AuthTimeout:               30 * time.Second,
	RefreshEnabled:            true,
	CatalogCacheTTL:           5 * time.Minute,
	CatalogCacheSize:          64,
	SecretBackend:             credstore.BackendAuto,
	LogLevel:                  "info",
	ConnectivityCheckInterval: 15 * time.Second,
}

// NewDefaultOptions returns a copy the default options. It's the caller's
// responsibility to do a follow up Validate call.
func NewDefaultOptions() *Options {
	newOpts := defaultOptions
	newOpts.DataDir = defaultDataDir()
	newOpts.viper = viper.New()
	return &newOpts
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(dir, "storefront")
}

// NewOptionsFromConfig builds the options by parsing environment variables
// and the config file, if any.
func NewOptionsFromConfig(configFile string) (*Options, error) {
	o, err := optionsFromViper(configFile)
	if err != nil {
		return nil, fmt.Errorf("config: options from config file %q: %w", configFile, err)
	}
	return o, nil
}

func optionsFromViper(configFile string) (*Options, error) {
	// start a copy of the default options
	o := NewDefaultOptions()
	v := o.viper
	if err := bindEnvs(v); err != nil {
		return nil, fmt.Errorf("failed to bind options to env vars: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var metadata mapstructure.Metadata
	if err := v.Unmarshal(o, ViperHooks, func(c *mapstructure.DecoderConfig) { c.Metadata = &metadata }); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(metadata.Unused) > 0 {
		slices.Sort(metadata.Unused)
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(metadata.Unused, ", "))
	}

	// This is necessary because v.Unmarshal will overwrite .viper field.
	o.viper = v

	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("validation error %w", err)
	}
	return o, nil
}

// bindEnvs adds a Viper environment variable binding for each field in the
// Options struct, based on the mapstructure tag.
func bindEnvs(v *viper.Viper) error {
	t := reflect.TypeOf(Options{})
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, hasTag := field.Tag.Lookup("mapstructure")
		if !hasTag || tag == "-" {
			continue
		}
		key, _, _ := strings.Cut(tag, ",")
		envName := EnvPrefix + strings.ToUpper(key)
		if err := v.BindEnv(key, envName); err != nil {
			return fmt.Errorf("failed to bind field '%s' to env var '%s': %w",
				field.Name, envName, err)
		}
	}
	return nil
}

// Validate ensures the Options fields are valid.
func (o *Options) Validate() error {
	switch o.Environment {
	case EnvironmentDevelopment, EnvironmentProduction:
	default:
		return fmt.Errorf("config: %q is an invalid environment", o.Environment)
	}

	u, err := o.GetAPIBaseURL()
	if err != nil {
		return err
	}
	if o.Environment == EnvironmentProduction {
		if u.Scheme != "https" {
			return fmt.Errorf("config: api_base_url must use https in production, got %s", u.Redacted())
		}
		if o.InsecureSkipVerify {
			return errors.New("config: insecure_skip_verify is not allowed in production")
		}
	}

	switch o.SecretBackend {
	case credstore.BackendAuto, credstore.BackendKeyring, credstore.BackendFile, credstore.BackendMemory:
	default:
		return fmt.Errorf("config: %q is an invalid secret_backend", o.SecretBackend)
	}
	if o.DataDir == "" && o.SecretBackend != credstore.BackendMemory {
		return errors.New("config: data_dir is required")
	}

	for name, d := range map[string]time.Duration{
		"request_timeout":             o.RequestTimeout,
		"auth_timeout":                o.AuthTimeout,
		"catalog_cache_ttl":           o.CatalogCacheTTL,
		"connectivity_check_interval": o.ConnectivityCheckInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", name, d)
		}
	}
	if o.CatalogCacheSize <= 0 {
		return fmt.Errorf("config: catalog_cache_size must be positive, got %d", o.CatalogCacheSize)
	}

	if o.ConnectivityCheckAddr != "" {
		if _, _, err := net.SplitHostPort(o.ConnectivityCheckAddr); err != nil {
			return fmt.Errorf("config: bad connectivity_check_addr %s: %w", o.ConnectivityCheckAddr, err)
		}
	}

	if o.LogLevel != "" {
		if _, err := parseLogLevel(o.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// GetAPIBaseURL returns the parsed API base URL.
func (o *Options) GetAPIBaseURL() (*url.URL, error) {
	u, err := url.Parse(o.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("config: bad api_base_url %s: %w", o.APIBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("config: bad api_base_url %s: an absolute http or https url is required", o.APIBaseURL)
	}
	return u, nil
}

// IsProduction reports whether the client runs against production.
func (o *Options) IsProduction() bool {
	return o.Environment == EnvironmentProduction
}
