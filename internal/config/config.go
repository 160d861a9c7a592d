// Package config materializes all process configuration into one struct,
// built once at startup and passed by reference to the components that
// need it. Nothing else in the tree reads the environment.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the service consumes.
type Config struct {
	AppPort  string
	BlogName string
	AboutTxt string

	DatabaseDSN string

	JWTSecret  string
	SessionTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL string
	MailQueue   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AdminEmail   string

	StorageBackend string // "local" or "minio"
	UploadDir      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	FeedPageSize      int
	DashboardPageSize int
}

// Load reads configuration from environment variables with sensible
// defaults via Viper.
func Load() *Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("BLOG_NAME", "Default Blog")
	viper.SetDefault("ABOUT_TXT", "About me section")
	viper.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=gopress port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "default-secret-key")
	viper.SetDefault("SESSION_TTL_MINUTES", 24*60)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("MAIL_QUEUE", "mail_queue")
	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("STORAGE_BACKEND", "local")
	viper.SetDefault("UPLOAD_DIR", "static/assets/img")
	viper.SetDefault("MINIO_ENDPOINT", "")
	viper.SetDefault("MINIO_ACCESS_KEY", "")
	viper.SetDefault("MINIO_SECRET_KEY", "")
	viper.SetDefault("MINIO_BUCKET", "gopress-uploads")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("NO_OF_POSTS", 2)
	viper.SetDefault("DASHBOARD_PAGE_SIZE", 3)
	viper.AutomaticEnv() // Load environment variables

	return &Config{
		AppPort:  viper.GetString("APP_PORT"),
		BlogName: viper.GetString("BLOG_NAME"),
		AboutTxt: viper.GetString("ABOUT_TXT"),

		DatabaseDSN: viper.GetString("DATABASE_DSN"),

		JWTSecret:  viper.GetString("JWT_SECRET"),
		SessionTTL: time.Duration(viper.GetInt("SESSION_TTL_MINUTES")) * time.Minute,

		RedisAddr:     viper.GetString("REDIS_ADDR"),
		RedisPassword: viper.GetString("REDIS_PASSWORD"),
		RedisDB:       viper.GetInt("REDIS_DB"),

		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
		MailQueue:   viper.GetString("MAIL_QUEUE"),

		SMTPHost:     viper.GetString("SMTP_HOST"),
		SMTPPort:     viper.GetInt("SMTP_PORT"),
		SMTPUsername: viper.GetString("SMTP_USERNAME"),
		SMTPPassword: viper.GetString("SMTP_PASSWORD"),
		AdminEmail:   viper.GetString("ADMIN_EMAIL"),

		StorageBackend: viper.GetString("STORAGE_BACKEND"),
		UploadDir:      viper.GetString("UPLOAD_DIR"),
		MinioEndpoint:  viper.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: viper.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: viper.GetString("MINIO_SECRET_KEY"),
		MinioBucket:    viper.GetString("MINIO_BUCKET"),
		MinioUseSSL:    viper.GetBool("MINIO_USE_SSL"),

		FeedPageSize:      viper.GetInt("NO_OF_POSTS"),
		DashboardPageSize: viper.GetInt("DASHBOARD_PAGE_SIZE"),
	}
}
