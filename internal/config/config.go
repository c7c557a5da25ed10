package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for exportmate
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Database DatabaseConfig `mapstructure:"database"`
	Advisory AdvisoryConfig `mapstructure:"advisory"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Predict  PredictConfig  `mapstructure:"predict"`
	UI       UIConfig       `mapstructure:"ui"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// AdminConfig holds API authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AdvisoryConfig holds the remote advisory/prediction service endpoint
type AdvisoryConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	ChatPath       string `mapstructure:"chat_path"`
	PredictPath    string `mapstructure:"predict_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the request timeout for the advisory service.
func (c AdvisoryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ChatConfig holds conversation defaults
type ChatConfig struct {
	Greeting     string `mapstructure:"greeting"`
	DefaultTitle string `mapstructure:"default_title"`
}

// PredictConfig holds fixed defaults applied to prediction requests
type PredictConfig struct {
	DefaultStock    int    `mapstructure:"default_stock"`
	DefaultPlatform string `mapstructure:"default_platform"`
}

// UIConfig holds frontend presentation configuration
type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	PrimaryColor string `mapstructure:"primary_color"`
	Placeholder  string `mapstructure:"placeholder"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("EXPORTMATE")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("admin.api_key", "")

	v.SetDefault("database.path", "./data/exportmate.db")

	v.SetDefault("advisory.base_url", "http://127.0.0.1:5000")
	v.SetDefault("advisory.chat_path", "/chat")
	v.SetDefault("advisory.predict_path", "/predict")
	v.SetDefault("advisory.timeout_seconds", 30)

	v.SetDefault("chat.greeting", "Hi! Enter the product or sector you want to export (e.g. \"Olive oil\", \"Furniture\", \"Textile\") and I will suggest the best target countries.")
	v.SetDefault("chat.default_title", "New Chat")

	v.SetDefault("predict.default_stock", 100)
	v.SetDefault("predict.default_platform", "E-commerce")

	v.SetDefault("ui.theme", "light")
	v.SetDefault("ui.primary_color", "#3b82f6")
	v.SetDefault("ui.placeholder", "Enter the product you want to export...")
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
