package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
	DataDir         string                    `yaml:"data_dir" mapstructure:"data_dir"`
	BrandProfile    string                    `yaml:"brand_profile" mapstructure:"brand_profile"`
	ReferencePosts  string                    `yaml:"reference_posts" mapstructure:"reference_posts"`
	Generation      GenerationConfig          `yaml:"generation" mapstructure:"generation"`
	Usage           UsageConfig               `yaml:"usage" mapstructure:"usage"`
}

type ProviderConfig struct {
	Type    string `yaml:"type" mapstructure:"type"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	Model   string `yaml:"model" mapstructure:"model"`
}

type GenerationConfig struct {
	MinWords            int     `yaml:"min_words" mapstructure:"min_words"`
	MaxWords            int     `yaml:"max_words" mapstructure:"max_words"`
	TargetWords         int     `yaml:"target_words" mapstructure:"target_words"`
	MaxAttempts         int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	AllowDuplicates     bool    `yaml:"allow_duplicates" mapstructure:"allow_duplicates"`
}

type UsageConfig struct {
	MaxPosts    int `yaml:"max_posts" mapstructure:"max_posts"`
	WindowHours int `yaml:"window_hours" mapstructure:"window_hours"`
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DefaultProvider: "anthropic",
		DataDir:         filepath.Join(home, ".local", "share", "blogsmith"),
		Providers: map[string]ProviderConfig{
			"anthropic": {Type: "anthropic", APIKey: "$ANTHROPIC_API_KEY", Model: "claude-sonnet-4-20250514"},
			"ollama":    {Type: "openai", BaseURL: "http://localhost:11434/v1", Model: "llama3.2"},
		},
		Generation: GenerationConfig{
			MinWords:            550,
			MaxWords:            600,
			TargetWords:         570,
			MaxAttempts:         3,
			SimilarityThreshold: 0.9,
			AllowDuplicates:     true,
		},
		Usage: UsageConfig{
			MaxPosts:    10,
			WindowHours: 12,
		},
	}
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "blogsmith")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "blogsmith")
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths
	viper.AddConfigPath(".")
	viper.AddConfigPath(configDir())

	// Environment variables
	viper.SetEnvPrefix("BLOGSMITH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error produced
			return nil, err
		}
		// Config file not found; ignore and use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Manual expansion for keys in config file
	for name, p := range cfg.Providers {
		p.APIKey = expandEnv(p.APIKey)
		p.BaseURL = expandEnv(p.BaseURL)
		cfg.Providers[name] = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) ProviderFor(name string) (ProviderConfig, bool) {
	p, ok := c.Providers[name]
	return p, ok
}

// Validate checks the configuration for errors and normalizes
// out-of-range values back to their defaults.
func (c *Config) Validate() error {
	if c.DefaultProvider == "" {
		return fmt.Errorf("config: default_provider is required")
	}
	if _, ok := c.Providers[c.DefaultProvider]; !ok {
		return fmt.Errorf("config: default_provider %q not found in providers", c.DefaultProvider)
	}
	for name, p := range c.Providers {
		validTypes := map[string]bool{"openai": true, "anthropic": true}
		if !validTypes[p.Type] {
			return fmt.Errorf("config: provider %q has invalid type %q (must be openai or anthropic)", name, p.Type)
		}
		if p.Type == "openai" && p.BaseURL == "" {
			return fmt.Errorf("config: provider %q (type openai) requires base_url", name)
		}
	}
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if c.Generation.MinWords < 1 {
		c.Generation.MinWords = 550
	}
	if c.Generation.MaxWords <= c.Generation.MinWords {
		c.Generation.MaxWords = c.Generation.MinWords + 50
	}
	if c.Generation.TargetWords < c.Generation.MinWords || c.Generation.TargetWords > c.Generation.MaxWords {
		c.Generation.TargetWords = (c.Generation.MinWords + c.Generation.MaxWords) / 2
	}
	if c.Generation.MaxAttempts < 1 {
		c.Generation.MaxAttempts = 3
	}
	if c.Generation.SimilarityThreshold <= 0 || c.Generation.SimilarityThreshold > 1 {
		c.Generation.SimilarityThreshold = 0.9
	}
	if c.Usage.MaxPosts < 1 {
		c.Usage.MaxPosts = 10
	}
	if c.Usage.WindowHours < 1 {
		c.Usage.WindowHours = 12
	}
	return nil
}
