package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Mail   MailConfig
	Upload UploadConfig
	App    AppConfig
}

type ServerConfig struct {
	Port string
}

// StoreConfig identifies the GitHub repository used as the content store.
type StoreConfig struct {
	Owner  string
	Repo   string
	Token  string
	Branch string
	// Root is the directory inside the repository holding the per-category
	// project folders and index.json.
	Root string
}

type MailConfig struct {
	ResendAPIKey  string
	ReceiverEmail string
}

type UploadConfig struct {
	MaxFileSize int64
	MaxFiles    int
}

type AppConfig struct {
	Environment string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Store: StoreConfig{
			Owner:  getEnv("GITHUB_OWNER", ""),
			Repo:   getEnv("GITHUB_REPO", ""),
			Token:  getEnv("GITHUB_TOKEN", ""),
			Branch: getEnv("GITHUB_BRANCH", "main"),
			Root:   getEnv("CONTENT_ROOT", "public/projects"),
		},
		Mail: MailConfig{
			ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
			ReceiverEmail: getEnv("RECEIVER_EMAIL", ""),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 100*1024*1024),
			MaxFiles:    getEnvAsInt("MAX_FILES", 10),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Store.Owner == "" {
		return fmt.Errorf("GITHUB_OWNER is required")
	}

	if c.Store.Repo == "" {
		return fmt.Errorf("GITHUB_REPO is required")
	}

	if c.Store.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN is required")
	}

	if c.Mail.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY is required")
	}

	if c.Mail.ReceiverEmail == "" {
		return fmt.Errorf("RECEIVER_EMAIL is required")
	}

	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("MAX_FILES must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
