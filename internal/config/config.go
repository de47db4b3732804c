package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Queue   QueueConfig
	Email   EmailConfig
	Extract ExtractConfig
	Parse   ParseConfig
}

// EmailConfig holds review notification delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// QueueConfig holds parse queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractConfig holds PDF text extraction settings.
type ExtractConfig struct {
	// OCREnabled turns on the Tesseract fallback for scanned ICDCs whose
	// pages carry no embedded text layer.
	OCREnabled bool `mapstructure:"ocr_enabled"`
	// TessdataPath points at the Tesseract trained-data directory; empty
	// uses the system default.
	TessdataPath string `mapstructure:"tessdata_path"`
	// MinTextChars is the threshold below which an extracted text layer is
	// considered absent and the OCR fallback kicks in.
	MinTextChars int `mapstructure:"min_text_chars"`
}

// ParseConfig holds tunables for the ICDC extraction core.
type ParseConfig struct {
	// SizeToleranceML is the fuzzy brand-match window in millilitres.
	SizeToleranceML int `mapstructure:"size_tolerance_ml"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the THEKA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("THEKA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "theka")
	v.SetDefault("db.password", "theka_secret")
	v.SetDefault("db.name", "theka_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "theka-icdc-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "noreply@theka.local")
	v.SetDefault("email.from_name", "THEKA")
	v.SetDefault("email.to_address", "")

	// Extract defaults
	v.SetDefault("extract.ocr_enabled", true)
	v.SetDefault("extract.tessdata_path", "")
	v.SetDefault("extract.min_text_chars", 64)

	// Parse defaults
	v.SetDefault("parse.size_tolerance_ml", 10)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "THEKA_SERVER_PORT",
		"server.read_timeout":      "THEKA_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "THEKA_SERVER_WRITE_TIMEOUT",
		"server.environment":       "THEKA_SERVER_ENVIRONMENT",
		"db.host":                  "THEKA_DB_HOST",
		"db.port":                  "THEKA_DB_PORT",
		"db.user":                  "THEKA_DB_USER",
		"db.password":              "THEKA_DB_PASSWORD",
		"db.name":                  "THEKA_DB_NAME",
		"db.sslmode":               "THEKA_DB_SSLMODE",
		"db.max_open":              "THEKA_DB_MAX_OPEN",
		"db.max_idle":              "THEKA_DB_MAX_IDLE",
		"s3.region":                "THEKA_S3_REGION",
		"s3.bucket":                "THEKA_S3_BUCKET",
		"s3.endpoint":              "THEKA_S3_ENDPOINT",
		"s3.access_key":            "THEKA_S3_ACCESS_KEY",
		"s3.secret_key":            "THEKA_S3_SECRET_KEY",
		"s3.max_file_size_mb":      "THEKA_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "THEKA_S3_PRESIGN_EXPIRY",
		"log.level":                "THEKA_LOG_LEVEL",
		"log.format":               "THEKA_LOG_FORMAT",
		"cors.allowed_origins":     "THEKA_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs": "THEKA_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":        "THEKA_QUEUE_MAX_RETRIES",
		"queue.concurrency":        "THEKA_QUEUE_CONCURRENCY",
		"email.provider":           "THEKA_EMAIL_PROVIDER",
		"email.region":             "THEKA_EMAIL_REGION",
		"email.from_address":       "THEKA_EMAIL_FROM_ADDRESS",
		"email.from_name":          "THEKA_EMAIL_FROM_NAME",
		"email.to_address":         "THEKA_EMAIL_TO_ADDRESS",
		"extract.ocr_enabled":      "THEKA_EXTRACT_OCR_ENABLED",
		"extract.tessdata_path":    "THEKA_EXTRACT_TESSDATA_PATH",
		"extract.min_text_chars":   "THEKA_EXTRACT_MIN_TEXT_CHARS",
		"parse.size_tolerance_ml":  "THEKA_PARSE_SIZE_TOLERANCE_ML",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if THEKA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("THEKA_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ToAddress:   v.GetString("email.to_address"),
	}

	cfg.Extract = ExtractConfig{
		OCREnabled:   v.GetBool("extract.ocr_enabled"),
		TessdataPath: v.GetString("extract.tessdata_path"),
		MinTextChars: v.GetInt("extract.min_text_chars"),
	}

	cfg.Parse = ParseConfig{
		SizeToleranceML: v.GetInt("parse.size_tolerance_ml"),
	}

	return cfg, nil
}
