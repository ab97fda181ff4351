package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LLM     LLMConfig
	Server  ServerConfig
	Agent   AgentConfig
	Store   StoreConfig
	Mailbox MailboxConfig
	Log     LogConfig
}

// LLMConfig holds the reasoning-capability client configuration
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// AgentConfig holds the turn loop configuration
type AgentConfig struct {
	SystemPrompt  string `mapstructure:"system_prompt"`
	MaxToolCycles int    `mapstructure:"max_tool_cycles"`
}

// StoreConfig selects and configures the session store driver.
type StoreConfig struct {
	Driver string      `mapstructure:"driver"` // memory, sqlite or redis
	Path   string      `mapstructure:"path"`   // sqlite database path
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds the redis session store configuration
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MailboxConfig holds the mailbox backend configuration. The access token
// is the already-authenticated handle; the login flow producing it is not
// part of this service.
type MailboxConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AccessToken string `mapstructure:"access_token"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from config.yaml, or from the file named by
// the CONFIG_PATH environment variable when set.
func Load() (*Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("agent.max_tool_cycles", 5)
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("store.path", "sessions.db")
	viper.SetDefault("mailbox.base_url", "https://gmail.googleapis.com/gmail/v1")
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
