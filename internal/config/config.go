// Package config handles storysmith configuration: defaults, an optional
// config file under ~/.storysmith, and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all storysmith configuration.
type Config struct {
	Hub   HubConfig   `mapstructure:"hub"`
	LLM   LLMConfig   `mapstructure:"llm"`
	Agent AgentConfig `mapstructure:"agent"`
	Eval  EvalConfig  `mapstructure:"eval"`
}

// HubConfig configures the prompt/dataset service client.
type HubConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// LLMConfig configures the chat completions client.
type LLMConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// AgentConfig configures the tool-calling chat agent.
type AgentConfig struct {
	SystemPrompt string `mapstructure:"system_prompt"`

	// ParallelToolCalls resolves multiple tool calls of one assistant turn
	// concurrently. Off by default: arithmetic is generally sequential.
	ParallelToolCalls bool `mapstructure:"parallel_tool_calls"`
}

// EvalConfig configures evaluation runs.
type EvalConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

const defaultSystemPrompt = "You are a helpful assistant tasked with performing arithmetic on a set of inputs."

// Dir returns the configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".storysmith"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hub.url", "https://hub.storysmith.dev")
	// Empty defaults so AutomaticEnv picks the keys up during Unmarshal.
	v.SetDefault("hub.api_key", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout_seconds", 120)
	v.SetDefault("agent.system_prompt", defaultSystemPrompt)
	v.SetDefault("agent.parallel_tool_calls", false)
	v.SetDefault("eval.max_concurrency", 2)
}

// Load reads configuration. Precedence, lowest to highest: defaults, config
// file, STORYSMITH_* environment variables. API keys also fall back to the
// plain HUB_API_KEY and OPENAI_API_KEY variables so credentials work without
// a config file. A missing config file is not an error unless an explicit
// path was given.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STORYSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Hub.APIKey == "" {
		cfg.Hub.APIKey = os.Getenv("HUB_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return &cfg, nil
}

// Set writes one key into the config file under the config dir, creating the
// directory and file on first use. It returns the path written.
func Set(key, value string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.Set(key, value)
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config %s: %w", path, err)
	}
	return path, nil
}

// Default returns the built-in configuration without reading any file or
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(&cfg)
	return &cfg
}
