package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Matching MatchingConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TelegramConfig struct {
	// BotToken may be empty: notifications then fall back to the log
	// notifier (local development).
	BotToken string
}

// MatchingConfig collects every policy constant that diverged across
// earlier revisions of this system.
type MatchingConfig struct {
	// ScoreThreshold is the minimum compatibility score; age-bracket
	// overlap and level adjacency each contribute one point.
	ScoreThreshold int
	// RatingFloor excludes candidates rated below it.
	RatingFloor float64
	// PoorScoreMax: feedback with any score at or below it permanently
	// excludes the pair.
	PoorScoreMax int
	// MatchTTL is the active-match window.
	MatchTTL time.Duration
	// ReviewDelay is how long after pairing the review prompt fires.
	ReviewDelay time.Duration
	// SchedulerInterval is the review-queue polling period.
	SchedulerInterval time.Duration
	// SessionTTL bounds an in-progress registration dialogue.
	SessionTTL time.Duration
	// PendingReviewTTL bounds how long a delivered prompt awaits a reply.
	PendingReviewTTL time.Duration
	// StoreTimeout bounds every store operation.
	StoreTimeout time.Duration
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or a .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Try to read from .env, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	setDefaults()

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Telegram: TelegramConfig{
			BotToken: viper.GetString("TELEGRAM_BOT_TOKEN"),
		},
		Matching: MatchingConfig{
			ScoreThreshold:    viper.GetInt("MATCH_SCORE_THRESHOLD"),
			RatingFloor:       viper.GetFloat64("MATCH_RATING_FLOOR"),
			PoorScoreMax:      viper.GetInt("MATCH_POOR_SCORE_MAX"),
			MatchTTL:          viper.GetDuration("MATCH_TTL"),
			ReviewDelay:       viper.GetDuration("REVIEW_DELAY"),
			SchedulerInterval: viper.GetDuration("REVIEW_SCHEDULER_INTERVAL"),
			SessionTTL:        viper.GetDuration("REGISTRATION_SESSION_TTL"),
			PendingReviewTTL:  viper.GetDuration("PENDING_REVIEW_TTL"),
			StoreTimeout:      viper.GetDuration("STORE_TIMEOUT"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("MATCH_SCORE_THRESHOLD", 2)
	viper.SetDefault("MATCH_RATING_FLOOR", 2.0)
	viper.SetDefault("MATCH_POOR_SCORE_MAX", 2)
	viper.SetDefault("MATCH_TTL", 48*time.Hour)
	viper.SetDefault("REVIEW_DELAY", 48*time.Hour)
	viper.SetDefault("REVIEW_SCHEDULER_INTERVAL", time.Minute)
	viper.SetDefault("REGISTRATION_SESSION_TTL", 30*time.Minute)
	viper.SetDefault("PENDING_REVIEW_TTL", 7*24*time.Hour)
	viper.SetDefault("STORE_TIMEOUT", 5*time.Second)
	viper.SetDefault("LOG_LEVEL", "info")
}

// Validate checks critical configuration values. Failures here abort
// process startup.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if c.Matching.ScoreThreshold < 0 || c.Matching.ScoreThreshold > 2 {
		return fmt.Errorf("match score threshold must be between 0 and 2")
	}
	if c.Matching.PoorScoreMax < 1 || c.Matching.PoorScoreMax > 5 {
		return fmt.Errorf("poor score max must be between 1 and 5")
	}
	if c.Matching.MatchTTL <= 0 {
		return fmt.Errorf("match TTL must be positive")
	}
	if c.Matching.SchedulerInterval <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns the Redis address.
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
