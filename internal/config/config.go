// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BookingConfig struct {
	// QuiesceDelayMS is how long the form inputs must stay unchanged
	// before an availability query fires. Read by programs embedding a
	// form session (session.Config.QuiesceDelay); the server binary
	// does not consume it.
	QuiesceDelayMS int `yaml:"quiesce_delay_ms"`

	// Base hourly rates per court type, in currency units.
	IndoorHourlyRate  float64 `yaml:"indoor_hourly_rate"`
	OutdoorHourlyRate float64 `yaml:"outdoor_hourly_rate"`
}

type EmailConfig struct {
	Region string `yaml:"region"`
	Sender string `yaml:"sender"`
	// Notify is the front-desk inbox that receives booking
	// confirmations and reminders.
	Notify string `yaml:"notify"`
	// Loaded from environment
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

// Configured reports whether enough is present to construct an SES client.
func (e EmailConfig) Configured() bool {
	return e.Region != "" && e.Sender != "" && e.AccessKeyID != "" && e.SecretAccessKey != ""
}

type RemindersConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Cron        string `yaml:"cron"`
	HoursBefore int    `yaml:"hours_before"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Booking   BookingConfig   `yaml:"booking"`
	Email     EmailConfig     `yaml:"email"`
	Reminders RemindersConfig `yaml:"reminders"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required for sqlite")
	}
	if c.Booking.QuiesceDelayMS < 0 {
		return fmt.Errorf("quiesce delay must not be negative")
	}
	if c.Reminders.Enabled && c.Reminders.Cron == "" {
		return fmt.Errorf("reminders cron expression is required when reminders are enabled")
	}
	return nil
}

// QuiesceDelay returns the configured debounce delay for form session
// embedders, defaulting to 350ms.
func (c *Config) QuiesceDelay() time.Duration {
	if c.Booking.QuiesceDelayMS <= 0 {
		return 350 * time.Millisecond
	}
	return time.Duration(c.Booking.QuiesceDelayMS) * time.Millisecond
}
