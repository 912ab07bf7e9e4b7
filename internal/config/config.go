// Package config centralizes application configuration loaded from a YAML
// config file, environment variables, and built-in defaults.
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
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Feeds    Feeds    `mapstructure:"feeds"`
	Trends   Trends   `mapstructure:"trends"`
	Classify Classify `mapstructure:"classify"`
	Search   Search   `mapstructure:"search"`
	Pipeline Pipeline `mapstructure:"pipeline"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds generation-service configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Feeds holds feed collector configuration
type Feeds struct {
	File            string `mapstructure:"file"`               // Optional YAML file with feed descriptors
	UserAgent       string `mapstructure:"user_agent"`         // User-Agent sent to feed endpoints
	Timeout         string `mapstructure:"timeout"`            // Per-feed fetch timeout
	MaxItemsPerFeed int    `mapstructure:"max_items_per_feed"` // 0 = no limit
}

// Trends holds topic clusterer configuration
type Trends struct {
	Window  string `mapstructure:"window"`   // Trailing time window for items
	TopN    int    `mapstructure:"top_n"`    // Maximum topics to keep
	SeedsOn bool   `mapstructure:"seeds_on"` // Whether seed fallback is enabled
}

// Classify holds classifier configuration
type Classify struct {
	Threshold int    `mapstructure:"threshold"`  // Keyword-tier score below which the model tier runs
	CallDelay string `mapstructure:"call_delay"` // Delay between sequential model calls in batch mode
}

// Search holds relevance search configuration
type Search struct {
	MaxResults int `mapstructure:"max_results"`
	MinScore   int `mapstructure:"min_score"`
}

// Pipeline holds batch pipeline configuration
type Pipeline struct {
	GenerateDelay    string   `mapstructure:"generate_delay"`    // Delay between generation calls
	WantedCategories []string `mapstructure:"wanted_categories"` // Categories kept by the relevance filter; empty keeps all
	MinConfidence    int      `mapstructure:"min_confidence"`    // Minimum classification confidence for the relevance filter
	Briefs           bool     `mapstructure:"briefs"`            // Also generate a creative brief per topic
}

var globalConfig *Config

// Load loads the configuration from defaults, an optional config file, and
// environment variables.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".trendpress")
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
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
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

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".trendpress")

	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	viper.SetDefault("feeds.user_agent", "Trendpress/1.0 (+https://trendpress.dev)")
	viper.SetDefault("feeds.timeout", "15s")
	viper.SetDefault("feeds.max_items_per_feed", 50)

	viper.SetDefault("trends.window", "24h")
	viper.SetDefault("trends.top_n", 10)
	viper.SetDefault("trends.seeds_on", true)

	viper.SetDefault("classify.threshold", 50)
	viper.SetDefault("classify.call_delay", "500ms")

	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.min_score", 5)

	viper.SetDefault("pipeline.generate_delay", "1s")
	viper.SetDefault("pipeline.min_confidence", 40)
	viper.SetDefault("pipeline.briefs", false)
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})
}

// bindEnvKeys binds the first set environment variable from the candidate
// list to a viper key.
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig checks durations and numeric bounds.
func validateConfig(config *Config) error {
	durations := map[string]string{
		"ai.gemini.timeout":       config.AI.Gemini.Timeout,
		"feeds.timeout":           config.Feeds.Timeout,
		"trends.window":           config.Trends.Window,
		"classify.call_delay":     config.Classify.CallDelay,
		"pipeline.generate_delay": config.Pipeline.GenerateDelay,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q", key, value)
		}
	}

	if config.Classify.Threshold < 0 || config.Classify.Threshold > 100 {
		return fmt.Errorf("classify.threshold must be in [0,100], got %d", config.Classify.Threshold)
	}
	if config.Trends.TopN <= 0 {
		return fmt.Errorf("trends.top_n must be positive, got %d", config.Trends.TopN)
	}
	return nil
}

// Duration parses a config duration string, returning the fallback when the
// string is empty or invalid.
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
