package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Application
	AppName string `yaml:"APP_NAME"`
	AppURL  string `yaml:"APP_URL"`
	AppPort string `yaml:"APP_PORT"`
	AppEnv  string `yaml:"APP_ENV"`

	// Logging
	LogLevel  string `yaml:"LOG_LEVEL"`
	LogFormat string `yaml:"LOG_FORMAT"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// Tokens
	JWTSecret       string `yaml:"JWT_SECRET"`
	TokenTTLMinutes string `yaml:"TOKEN_TTL_MINUTES"`

	// Google sign-in client ids
	GoogleClientID        string `yaml:"GOOGLE_CLIENT_ID"`
	GoogleAndroidClientID string `yaml:"GOOGLE_ANDROID_CLIENT_ID"`
	GoogleIOSClientID     string `yaml:"GOOGLE_IOS_CLIENT_ID"`

	// Object storage (S3 compatible)
	StorageURL           string `yaml:"STORAGE_URL"`
	StorageRegion        string `yaml:"STORAGE_REGION"`
	StorageAccessKey     string `yaml:"STORAGE_ACCESS_KEY"`
	StorageSecretKey     string `yaml:"STORAGE_SECRET_KEY"`
	StorageBucketRecipes string `yaml:"STORAGE_BUCKET_RECIPES"`
	StorageBucketAvatars string `yaml:"STORAGE_BUCKET_AVATARS"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	RateLimitPerSecond string `yaml:"RATE_LIMIT_PER_SECOND"`
}

var config = defaultConfig()

func defaultConfig() Config {
	return Config{
		AppName:              "Recipe Share API",
		AppURL:               "http://localhost:8000",
		AppPort:              "8000",
		AppEnv:               "production",
		LogLevel:             "info",
		LogFormat:            "json",
		TokenTTLMinutes:      "1440",
		StorageRegion:        "us-east-1",
		StorageBucketRecipes: "recipes",
		StorageBucketAvatars: "avatars",
		RateLimitPerSecond:   "20",
	}
}

// LoadConfig reads .env (optional) and config.yaml (optional), then lets
// environment variables override any key. Environment overrides are applied
// even when a file fails to load; the first such failure is returned.
func LoadConfig() error {
	var loadErr error
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		loadErr = errors.Wrap(err, "read .env")
	}

	file, err := os.ReadFile("config.yaml")
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &config); err != nil && loadErr == nil {
			loadErr = errors.Wrap(err, "parse config.yaml")
		}
	case !os.IsNotExist(err) && loadErr == nil:
		loadErr = errors.Wrap(err, "read config.yaml")
	}

	for _, key := range configKeys {
		if v, ok := os.LookupEnv(key); ok {
			SetConfig(key, v)
		}
	}
	return loadErr
}

var configKeys = []string{
	"APP_NAME", "APP_URL", "APP_PORT", "APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
	"DB_USER", "DB_NAME", "DB_PASSWORD", "DB_PORT", "DB_HOST",
	"JWT_SECRET", "TOKEN_TTL_MINUTES",
	"GOOGLE_CLIENT_ID", "GOOGLE_ANDROID_CLIENT_ID", "GOOGLE_IOS_CLIENT_ID",
	"STORAGE_URL", "STORAGE_REGION", "STORAGE_ACCESS_KEY", "STORAGE_SECRET_KEY",
	"STORAGE_BUCKET_RECIPES", "STORAGE_BUCKET_AVATARS",
	"SMTP_HOST", "SMTP_PORT", "SMTP_SENDER_NAME", "SMTP_AUTH_EMAIL", "SMTP_AUTH_PASSWORD",
	"RATE_LIMIT_PER_SECOND",
}

func (c *Config) field(key string) *string {
	switch key {
	case "APP_NAME":
		return &c.AppName
	case "APP_URL":
		return &c.AppURL
	case "APP_PORT":
		return &c.AppPort
	case "APP_ENV":
		return &c.AppEnv
	case "LOG_LEVEL":
		return &c.LogLevel
	case "LOG_FORMAT":
		return &c.LogFormat
	case "DB_USER":
		return &c.DBUser
	case "DB_NAME":
		return &c.DBName
	case "DB_PASSWORD":
		return &c.DBPassword
	case "DB_PORT":
		return &c.DBPort
	case "DB_HOST":
		return &c.DBHost
	case "JWT_SECRET":
		return &c.JWTSecret
	case "TOKEN_TTL_MINUTES":
		return &c.TokenTTLMinutes
	case "GOOGLE_CLIENT_ID":
		return &c.GoogleClientID
	case "GOOGLE_ANDROID_CLIENT_ID":
		return &c.GoogleAndroidClientID
	case "GOOGLE_IOS_CLIENT_ID":
		return &c.GoogleIOSClientID
	case "STORAGE_URL":
		return &c.StorageURL
	case "STORAGE_REGION":
		return &c.StorageRegion
	case "STORAGE_ACCESS_KEY":
		return &c.StorageAccessKey
	case "STORAGE_SECRET_KEY":
		return &c.StorageSecretKey
	case "STORAGE_BUCKET_RECIPES":
		return &c.StorageBucketRecipes
	case "STORAGE_BUCKET_AVATARS":
		return &c.StorageBucketAvatars
	case "SMTP_HOST":
		return &c.SMTPHost
	case "SMTP_PORT":
		return &c.SMTPPort
	case "SMTP_SENDER_NAME":
		return &c.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return &c.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return &c.SMTPAuthPassword
	case "RATE_LIMIT_PER_SECOND":
		return &c.RateLimitPerSecond
	default:
		return nil
	}
}

func GetConfig(key string) string {
	if f := config.field(key); f != nil {
		return *f
	}
	return ""
}

// SetConfig overrides a single key. Unknown keys are ignored.
func SetConfig(key, value string) {
	if f := config.field(key); f != nil {
		*f = value
	}
}

// GetConfigInt returns the key as an int, or def when unset or malformed.
func GetConfigInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(GetConfig(key)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// GetConfigList splits a comma separated key, skipping empty items.
func GetConfigList(keys ...string) []string {
	var out []string
	for _, key := range keys {
		for _, item := range strings.Split(GetConfig(key), ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
