package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// PHISHING_SHIELD_SERVER_LISTEN_ADDRESS for server.listen_address
const EnvPrefix = "PHISHING_SHIELD"

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance from the default search paths
func New() (*Config, error) {
	return Load("")
}

// Load creates a configuration instance. When configFile is empty the
// default search paths are used and a missing file is not an error.
func Load(configFile string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/phishing-shield/")
		v.AddConfigPath("$HOME/.phishing-shield")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// loadDotEnv exports variables from .env files that exist. Variables already
// set in the environment win.
func loadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.filter_type", "http")
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.max_body_size", "2M")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_phishing", false)
	v.SetDefault("server.block_level", "CRITICAL")
	v.SetDefault("server.headers.score", "X-Phishing-Score")
	v.SetDefault("server.headers.level", "X-Phishing-Risk")
	v.SetDefault("server.headers.reasons", "X-Phishing-Reasons")
	v.SetDefault("server.headers.max_reasons_length", 512)
	v.SetDefault("server.modify_subject", false)
	v.SetDefault("server.subject_prefix", "[PHISHING] ")

	// Postfix re-injection
	v.SetDefault("server.postfix.enabled", true)
	v.SetDefault("server.postfix.address", "127.0.0.1")
	v.SetDefault("server.postfix.port", 10026)

	// Detector defaults
	v.SetDefault("detector.brand_domains", []string{
		"paypal.com", "google.com", "apple.com", "microsoft.com", "amazon.com",
		"facebook.com", "bank.com", "wellsfargo.com", "chase.com",
	})
	v.SetDefault("detector.lookalike_distance", 2)

	v.SetDefault("phishing.whitelisted_domains", []string{})

	// Audit defaults
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.type", "csv")
	v.SetDefault("audit.csv_path", "flagged.csv")
	v.SetDefault("audit.sqlite_path", "/data/phishing_audit.db")
	v.SetDefault("audit.mysql_dsn", "user:password@tcp(localhost:3306)/phishing_shield")
	v.SetDefault("audit.memory_capacity", 1000)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// Set overrides a value, used by command line flags
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
