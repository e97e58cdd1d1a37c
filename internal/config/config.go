package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	Source  Source  `mapstructure:"source"`
	Crawler Crawler `mapstructure:"crawler"`
	AI      AI      `mapstructure:"ai"`
	Email   Email   `mapstructure:"email"`
	Logging Logging `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	DataDir string `mapstructure:"data_dir"` // Directory holding the sqlite database
	BaseURL string `mapstructure:"base_url"` // Public base URL used for links in digest emails
}

// Source holds Hacker News source API configuration
type Source struct {
	BaseURL      string `mapstructure:"base_url"`
	TopStories   int    `mapstructure:"top_stories"`   // How many top story ids to pull per run
	CommentDepth int    `mapstructure:"comment_depth"` // Max reply-tree recursion depth, 0 disables
	Timeout      string `mapstructure:"timeout"`
}

// Crawler holds crawling delegate (Apify) configuration
type Crawler struct {
	APIToken    string `mapstructure:"api_token"`
	Actor       string `mapstructure:"actor"`
	Mode        string `mapstructure:"mode"`       // cheerio (rendered text) or playwright (markdown)
	BatchSize   int    `mapstructure:"batch_size"` // Concurrent delegate calls per batch
	MaxAttempts int    `mapstructure:"max_attempts"`
	Timeout     string `mapstructure:"timeout"`
}

// AI holds LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Email holds outbound mail (Amazon SES) configuration
type Email struct {
	From      string `mapstructure:"from"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, environment and
// defaults, in the usual viper precedence order.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".skim")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the loaded configuration. Used by tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

func setDefaults() {
	viper.SetDefault("app.data_dir", ".skim-data")
	viper.SetDefault("app.base_url", "http://localhost:3000")

	viper.SetDefault("source.base_url", "https://hacker-news.firebaseio.com/v0")
	viper.SetDefault("source.top_stories", 30)
	viper.SetDefault("source.comment_depth", 2)
	viper.SetDefault("source.timeout", "30s")

	viper.SetDefault("crawler.actor", "apify~website-content-crawler")
	viper.SetDefault("crawler.mode", "cheerio")
	viper.SetDefault("crawler.batch_size", 20)
	viper.SetDefault("crawler.max_attempts", 3)
	viper.SetDefault("crawler.timeout", "5m")

	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "60s")

	viper.SetDefault("email.region", "us-east-1")

	viper.SetDefault("logging.level", "info")
}

func bindEnvironmentVariables() {
	// Keep the credential names the deployment environment already uses.
	_ = viper.BindEnv("ai.gemini.api_key", "GEMINI_API_KEY")
	_ = viper.BindEnv("crawler.api_token", "APIFY_API_TOKEN")
	_ = viper.BindEnv("email.access_key", "AWS_ACCESS_KEY_ID")
	_ = viper.BindEnv("email.secret_key", "AWS_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("email.region", "AWS_REGION")
	_ = viper.BindEnv("email.from", "FROM_EMAIL")
	_ = viper.BindEnv("source.base_url", "HN_BASE_URL")
	_ = viper.BindEnv("app.data_dir", "SKIM_DATA_DIR")
	_ = viper.BindEnv("app.base_url", "APP_BASE_URL")
}

// Duration parses a config duration string, falling back to the given default
// when the value is empty or malformed.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
