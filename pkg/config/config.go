package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the public Terraform-style registry protocol.
const (
	DefaultRegistryURLPrefix   = "https://registry.terraform.io/v1/modules"
	DefaultPrivateRegistryHost = "app.terraform.io"
	DefaultExternalModulesDir  = ".external_modules"
	DefaultHTTPTimeout         = 10 * time.Second
	DefaultMaxRedirects        = 5

	// ArchiveObjectURLPrefix marks a terminal archive location in the
	// X-Terraform-Get header, as opposed to a further indirection URL.
	ArchiveObjectURLPrefix = "https://archivist.terraform.io/v1/object"
)

// Config holds the resolver settings, captured once at startup so that
// components never re-read process environment themselves.
type Config struct {
	// RegistryURLPrefix is the base API URL of the public module registry.
	RegistryURLPrefix string `mapstructure:"registry_url_prefix"`
	// PrivateRegistryHost is the hostname identifying private-registry sources.
	PrivateRegistryHost string `mapstructure:"private_registry_host"`
	// Token is the bearer credential sent on registry requests. May be empty.
	Token string `mapstructure:"token"`
	// HTTPTimeout bounds every registry request.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	// ExternalModulesDir is the folder under the scan root where fetched
	// module trees are laid out.
	ExternalModulesDir string `mapstructure:"external_modules_dir"`
	// MaxRedirects bounds the X-Terraform-Get indirection chain.
	MaxRedirects int `mapstructure:"max_redirects"`
}

// Load reads the configuration from the environment (MODRES_* variables),
// falling back to the public-registry defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MODRES")
	v.AutomaticEnv()

	v.SetDefault("registry_url_prefix", DefaultRegistryURLPrefix)
	v.SetDefault("private_registry_host", DefaultPrivateRegistryHost)
	v.SetDefault("token", "")
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("external_modules_dir", DefaultExternalModulesDir)
	v.SetDefault("max_redirects", DefaultMaxRedirects)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling configuration: %w", err)
	}
	if cfg.MaxRedirects < 0 {
		return nil, fmt.Errorf("max_redirects must not be negative, got %d", cfg.MaxRedirects)
	}
	return &cfg, nil
}

// PrivateRegistryURLPrefix returns the API prefix for the configured private
// registry host.
func (c *Config) PrivateRegistryURLPrefix() string {
	return fmt.Sprintf("https://%s/api/registry/v1/modules", c.PrivateRegistryHost)
}
