package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

// OpenAIConfig holds the settings for the model provider.
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"` // Usually injected via OPENAI_API_KEY
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AuthConfig holds the settings for bearer-token verification.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"` // Usually injected via AUTH_JWT_SECRET
}

// AIConfig holds gateway tunables.
type AIConfig struct {
	// Monthly token budgets per plan tier. A budget of 0 means the plan
	// has no AI access at all (the entitlement gate rejects it).
	FreeTokenBudget    int64 `mapstructure:"free_token_budget"`
	PremiumTokenBudget int64 `mapstructure:"premium_token_budget"`
	TeamTokenBudget    int64 `mapstructure:"team_token_budget"`

	// Maximum number of transcript characters forwarded to the model.
	TranscriptMaxChars int `mapstructure:"transcript_max_chars"`

	// Response language used when the client sends an unsupported code.
	DefaultLanguage string `mapstructure:"default_language"`
}

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string // "memory" or a SQLite file path
	}
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Auth   AuthConfig   `mapstructure:"auth"`
	AI     AIConfig     `mapstructure:"ai"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from file and environment variables.
// Secrets (API key, JWT secret) are expected to come from the
// environment; the YAML file only carries non-sensitive tunables.
func LoadConfig() {
	viper.SetConfigName("config") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")  // Path to look for the config file in
	viper.AddConfigPath(".")         // Optionally look for config in the working directory
	viper.AddConfigPath("../config") // For running from locations like tests

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "memory")
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.timeout_seconds", 90)
	viper.SetDefault("ai.free_token_budget", 0)
	viper.SetDefault("ai.premium_token_budget", 500000)
	viper.SetDefault("ai.team_token_budget", 2000000)
	viper.SetDefault("ai.transcript_max_chars", 16000)
	viper.SetDefault("ai.default_language", "ko")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}

	// Environment variable overrides
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		AppConfig.Database.DSN = dsn
		log.Println("INFO: [Config] Database DSN overridden by environment variable DATABASE_DSN.")
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		AppConfig.OpenAI.APIKey = key
		log.Println("INFO: [Config] Loaded OpenAI API key from environment variable OPENAI_API_KEY.")
	}
	if secret := os.Getenv("AUTH_JWT_SECRET"); secret != "" {
		AppConfig.Auth.JWTSecret = secret
		log.Println("INFO: [Config] Loaded JWT secret from environment variable AUTH_JWT_SECRET.")
	}

	if AppConfig.OpenAI.APIKey == "" {
		log.Println("WARN: [Config] OpenAI API key is not set (OPENAI_API_KEY). AI requests will fail until it is provided.")
	}
	if AppConfig.Auth.JWTSecret == "" {
		log.Println("WARN: [Config] JWT secret is not set (AUTH_JWT_SECRET). All requests will be rejected as unauthenticated.")
	}

	log.Println("INFO: [Config] Configuration loading complete.")
}
