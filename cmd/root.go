package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/smartserve-ai/smartserve/internal/events"
	"github.com/smartserve-ai/smartserve/internal/sweeper"
	"github.com/smartserve-ai/smartserve/internal/tags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "smartserve"
)

type Config struct {
	Port        int            `mapstructure:"port" validate:"min=1,max=65535"`
	DatabaseURL string         `mapstructure:"database-url"`
	RedisURL    string         `mapstructure:"redis-url"`
	Events      *EventsConfig  `mapstructure:"events"`
	Sweeper     *SweeperConfig `mapstructure:"sweeper"`
	HTTP        *HTTPConfig    `mapstructure:"http"`
	Matching    *MatchConfig   `mapstructure:"matching"`
	AI          *AIConfig      `mapstructure:"ai" validate:"required"`
}

type EventsConfig struct {
	Channel string `mapstructure:"channel"`
}

type SweeperConfig struct {
	// Schedule is a cron spec. Empty disables the sweeper.
	Schedule string `mapstructure:"schedule"`
}

type HTTPConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

type MatchConfig struct {
	MinimumScore int `mapstructure:"minimum-score" validate:"min=0,max=100"`
}

type AIConfig struct {
	// Strategy selects the tag extractor: keyword or gemini.
	Strategy string        `mapstructure:"strategy" validate:"oneof=keyword gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	BaseURL      string        `mapstructure:"base-url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max-retries" validate:"min=0,max=10"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"min=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "smartserve matches volunteers with NGO needs using AI-extracted skill tags",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"port":                   "PORT",
		"database-url":           "DATABASE_URL",
		"redis-url":              "REDIS_URL",
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is smartserve.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 5000)
	v.SetDefault("events.channel", events.DefaultChannel)
	v.SetDefault("sweeper.schedule", sweeper.DefaultSchedule)
	v.SetDefault("http.request-timeout", 30*time.Second)
	v.SetDefault("http.shutdown-timeout", 10*time.Second)
	v.SetDefault("matching.minimum-score", 0)
	v.SetDefault("ai.strategy", tags.StrategyKeyword)
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.timeout", 10*time.Second)
	v.SetDefault("ai.gemini.max-retries", 2)
	v.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	config.AI.Strategy = strings.ToLower(strings.TrimSpace(config.AI.Strategy))
	if config.AI.Strategy == "" {
		config.AI.Strategy = tags.StrategyKeyword
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Events == nil {
		config.Events = &EventsConfig{}
	}
	if config.Sweeper == nil {
		config.Sweeper = &SweeperConfig{}
	}
	if config.HTTP == nil {
		config.HTTP = &HTTPConfig{}
	}
	if config.Matching == nil {
		config.Matching = &MatchConfig{}
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.HTTP.RequestTimeout < 0 || config.HTTP.ShutdownTimeout < 0 || config.AI.Gemini.Timeout < 0 {
		return nil, errors.New("invalid config: timeouts must not be negative")
	}

	return config, nil
}
