package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"premises-access-control/internal/email"
)

const QR_IMAGE_SIZE = 512

// ReportConfig controls the weekly access report delivery.
type ReportConfig struct {
	Weekday string `mapstructure:"weekday"` // Day of week the report is sent, e.g. "monday"
	Hour    int    `mapstructure:"hour"`
	Minute  int    `mapstructure:"minute"`
	// Path to a YAML file listing report recipient addresses.
	RecipientsFile string `mapstructure:"recipients_file"`
}

type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// Address the HTTP server binds to, e.g. ":8080".
	Listen string `mapstructure:"listen"`

	// IANA timezone name used for workday dates and report scheduling.
	Timezone string `mapstructure:"timezone"`

	// Default credential validity in hours for issued credentials.
	// Zero means credentials never expire.
	CredentialValidityHours uint `mapstructure:"credential_validity_hours"`

	// Comma separated list of allowed CIDR networks. Empty means allow all.
	AllowedNetworks string `mapstructure:"allowed_networks"`

	Storage Storage `mapstructure:"storage"`

	Email email.Client `mapstructure:"email"`

	Report ReportConfig `mapstructure:"report"`
}

var Cfg *Config

// CredentialValidity returns the configured default validity as a duration.
func (c *Config) CredentialValidity() time.Duration {
	return time.Duration(c.CredentialValidityHours) * time.Hour
}

// Location resolves the configured timezone. Falls back to UTC on an
// empty setting.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// The /.dockerenv marker distinguishes container deployments, which keep
// their instance data under /app.
func runningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig merges defaults, the optional config.yaml and environment
// variables into a Config. An explicit configFile overrides the search path.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvPrefix("")

	for _, path := range configFile {
		v.SetConfigFile(path)
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file from the search path is fine, an explicitly
		// requested file is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || len(configFile) > 0 {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	// Relative sqlite paths are anchored to the instance folder.
	if sqlite := cfg.Storage.SQLite; sqlite != nil && sqlite.Path != ":memory:" {
		if !os.IsPathSeparator(sqlite.Path[0]) {
			sqlite.Path = fmt.Sprintf("%s/%s", getConfigPath(), sqlite.Path)
		}
	}

	return &cfg, nil
}
