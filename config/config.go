// Package config reads the batch's configuration from environment variables
// and builds its logger.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values.
type Config struct {
	// SoundCloud API
	ClientID     string
	ClientSecret string
	HTTPTimeout  time.Duration

	// Artist list sources, tried in order: sheet export, drive file, local.
	SheetFileID      string
	ArtistsDriveFile string
	ArtistsPath      string

	// Report output
	OutDir string

	// Google Drive delivery
	UploadToDrive    bool
	DriveTokenPath   string
	DriveFolderID    string
	DriveShareAnyone bool

	// Telegram delivery
	TelegramEnabled bool
	TelegramToken   string
	TelegramChatID  string

	// Run ledger
	LedgerPath string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Timestamps in reports and messages use this zone.
	Timezone *time.Location
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		ClientID:     os.Getenv("SC_CLIENT_ID"),
		ClientSecret: os.Getenv("SC_CLIENT_SECRET"),
		HTTPTimeout:  time.Duration(getEnvInt("SC_TIMEOUT_SECONDS", 30)) * time.Second,

		SheetFileID:      os.Getenv("GSHEET_ARTISTS_FILE_ID"),
		ArtistsDriveFile: os.Getenv("ARTISTS_DRIVE_FILE_ID"),
		ArtistsPath:      getEnv("ARTISTS_PATH", "artists.xlsx"),

		OutDir: getEnv("OUT_DIR", "out"),

		UploadToDrive:    getEnvBool("UPLOAD_TO_DRIVE", false),
		DriveTokenPath:   os.Getenv("GDRIVE_TOKEN_JSON_PATH"),
		DriveFolderID:    os.Getenv("DRIVE_FOLDER_ID"),
		DriveShareAnyone: getEnvBool("DRIVE_SHARE_ANYONE", false),

		TelegramEnabled: getEnvBool("TELEGRAM_ENABLED", false),
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:  os.Getenv("TELEGRAM_CHAT_ID"),

		LedgerPath: getEnv("RUN_LEDGER_PATH", ""),

		LogFile:  getEnv("SCPULSE_LOG_FILE", "/tmp/scpulse.log"),
		LogLevel: parseLogLevel(getEnv("SCPULSE_LOG_LEVEL", "INFO")),

		Timezone: loadLocation(getEnv("REPORT_TZ", "Asia/Tehran")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
