package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LLM     LLMConfig
	Store   StoreConfig
	Server  ServerConfig
	Project ProjectConfig
	Log     LogConfig
}

// LLMConfig holds the text-generation provider configuration
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects where conversation records live
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	Dir        string `mapstructure:"dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// ServerConfig holds the dashboard server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// ProjectConfig holds defaults applied to saved conversations
type ProjectConfig struct {
	DefaultName string `mapstructure:"default_name"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOpenAIModel = "gpt-4"

	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// DefaultModel is the model used when none is configured for provider.
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 1500)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.dir", "chat_logs")
	v.SetDefault("store.sqlite_path", "chat_logs.db")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5002")
	v.SetDefault("project.default_name", "MCP_Chat_Logger")
	v.SetDefault("log.level", "info")
}

// Load loads the configuration from config.yaml (or the file named by
// CONFIG_PATH), a .env file and CHATLOG_* environment variables.
// A missing config.yaml is not an error; a missing CONFIG_PATH file is.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CHATLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "CHATLOG_LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("llm.model", "CHATLOG_LLM_MODEL", "GEMINI_MODEL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("llm.temperature", "CHATLOG_LLM_TEMPERATURE", "GEMINI_TEMPERATURE"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("llm.max_tokens", "CHATLOG_LLM_MAX_TOKENS", "GEMINI_MAX_TOKENS"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.LLM.Model == "" {
		config.LLM.Model = DefaultModel(config.LLM.Provider)
	}

	return &config, nil
}
