package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultPort            = 5003
	DefaultDBPath          = "storage.db"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultDownloadTimeout = 2 * time.Minute
	DefaultAPIRateBurst    = 20

	// WebhookPath is where the HTTP server accepts Telegram updates.
	WebhookPath = "/telegram/webhook"

	uploadDirName = "uploads"
)

// Default task schedules, cron with a leading seconds field.
const (
	DefaultSQLMaintenanceSchedule = "0 0 4 * * *"
	DefaultStorageReportSchedule  = "0 0 * * * *"
)

// keys read from the environment without a default
var envOnlyKeys = []string{"telegram_bot_token"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("use_webhook", false)
	v.SetDefault("bot_public_url", "")
	v.SetDefault("webhook_secret", "")

	v.SetDefault("port", DefaultPort)
	v.SetDefault("upload_dir", defaultUploadDir())
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("static_dir", "")

	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)

	v.SetDefault("download_timeout", DefaultDownloadTimeout)
	v.SetDefault("api_rate_limit", 0)
	v.SetDefault("api_rate_burst", DefaultAPIRateBurst)
	v.SetDefault("cors_origins", []string{"*"})

	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", DefaultSQLMaintenanceSchedule)
	v.SetDefault("scheduler.tasks.storage_report.enabled", true)
	v.SetDefault("scheduler.tasks.storage_report.schedule", DefaultStorageReportSchedule)
}

// defaultUploadDir places uploads next to the executable, or in the working
// directory when the executable path cannot be determined.
func defaultUploadDir() string {
	exe, err := os.Executable()
	if err != nil {
		return uploadDirName
	}
	return filepath.Join(filepath.Dir(exe), uploadDirName)
}
