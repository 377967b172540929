// Package config loads the photobot configuration from the environment, an
// optional YAML file and an optional .env file, then validates it.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration wraps every loading and validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config holds all runtime settings.
type Config struct {
	TelegramToken string `mapstructure:"telegram_bot_token" validate:"required"`
	UseWebhook    bool   `mapstructure:"use_webhook"`
	PublicURL     string `mapstructure:"bot_public_url"     validate:"required_if=UseWebhook true,omitempty,url"`
	WebhookSecret string `mapstructure:"webhook_secret"`

	Port      int    `mapstructure:"port"       validate:"min=1,max=65535"`
	UploadDir string `mapstructure:"upload_dir" validate:"required"`
	DBPath    string `mapstructure:"db_path"    validate:"required"`
	StaticDir string `mapstructure:"static_dir"`

	LogLevel  string `mapstructure:"log_level"  validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text"`

	DownloadTimeout time.Duration `mapstructure:"download_timeout" validate:"min=1s"`

	// APIRateLimit is requests per second per client on /api; 0 disables it.
	APIRateLimit float64  `mapstructure:"api_rate_limit" validate:"min=0"`
	APIRateBurst int      `mapstructure:"api_rate_burst" validate:"min=1"`
	CORSOrigins  []string `mapstructure:"cors_origins"   validate:"min=1,dive,required"`

	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// SchedulerConfig lists the scheduled tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task and sets its cron schedule (with seconds field).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// WebhookURL is the address Telegram posts updates to in webhook mode.
func (c *Config) WebhookURL() string {
	return c.PublicURL + WebhookPath
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}
