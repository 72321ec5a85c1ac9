package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/MEKXH/toolgate/internal/approval"
)

// Config root configuration
type Config struct {
	Log   LogConfig   `mapstructure:"log" json:"log"`
	Gate  GateConfig  `mapstructure:"gate" json:"gate"`
	Tools ToolsConfig `mapstructure:"tools" json:"tools"`
}

// LogConfig application logging settings. Format is text or json.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
	File   string `mapstructure:"file" json:"file"`
}

// GateConfig approval gate settings. Timeout and PendingTTL are seconds;
// zero disables them.
type GateConfig struct {
	Mode                 string   `mapstructure:"mode" json:"mode"`
	InterruptBeforeTools []string `mapstructure:"interrupt_before_tools" json:"interrupt_before_tools"`
	ApprovalKeywords     []string `mapstructure:"approval_keywords" json:"approval_keywords"`
	Timeout              int      `mapstructure:"timeout" json:"timeout"`
	PendingTTL           int      `mapstructure:"pending_ttl" json:"pending_ttl"`
}

// ToolsConfig tool settings
type ToolsConfig struct {
	Exec ExecToolConfig `mapstructure:"exec" json:"exec"`
}

// ExecToolConfig shell exec settings
type ExecToolConfig struct {
	Timeout    int    `mapstructure:"timeout" json:"timeout"`
	WorkingDir string `mapstructure:"working_dir" json:"working_dir"`
}

// DefaultConfig returns config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Gate: GateConfig{
			Mode:                 "strict",
			InterruptBeforeTools: []string{"exec"},
			ApprovalKeywords:     append([]string(nil), approval.DefaultKeywords...),
		},
		Tools: ToolsConfig{
			Exec: ExecToolConfig{
				Timeout: 60,
			},
		},
	}
}

// ConfigDir returns the toolgate config directory
func ConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".toolgate")
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load loads config from the default path, writing defaults on first use.
func Load() (*Config, error) {
	configPath := ConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg, configPath); err != nil {
			return cfg, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads config from path on top of the defaults. Environment
// variables prefixed with TOOLGATE_ override file values.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("TOOLGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.MatchName = func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		}
	}); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func normalizeKey(input string) string {
	input = strings.ReplaceAll(input, "_", "")
	input = strings.ReplaceAll(input, "-", "")
	return strings.ToLower(input)
}

// Save writes cfg to path as indented JSON.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks that the configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	if level == "" {
		c.Log.Level = "info"
	} else {
		validLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[level] {
			return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
		}
		c.Log.Level = level
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "":
		c.Log.Format = "text"
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("log.format must be one of text, json; got %q", c.Log.Format)
	}

	mode := strings.ToLower(strings.TrimSpace(c.Gate.Mode))
	switch mode {
	case "":
		c.Gate.Mode = "strict"
	case "strict", "off":
		c.Gate.Mode = mode
	default:
		return fmt.Errorf("gate.mode must be one of strict, off; got %q", c.Gate.Mode)
	}

	if c.Gate.Timeout < 0 {
		return fmt.Errorf("gate.timeout must not be negative, got %d", c.Gate.Timeout)
	}
	if c.Gate.PendingTTL < 0 {
		return fmt.Errorf("gate.pending_ttl must not be negative, got %d", c.Gate.PendingTTL)
	}

	if c.Tools.Exec.Timeout < 0 {
		return fmt.Errorf("tools.exec.timeout must not be negative, got %d", c.Tools.Exec.Timeout)
	}
	if c.Tools.Exec.Timeout == 0 {
		c.Tools.Exec.Timeout = 60
	}

	return nil
}

// TimeoutDuration is how long a suspension may wait for a decision.
func (g GateConfig) TimeoutDuration() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}

// PendingTTLDuration is how long an undecided request stays pending.
func (g GateConfig) PendingTTLDuration() time.Duration {
	return time.Duration(g.PendingTTL) * time.Second
}

// ExecTimeout returns the exec tool timeout.
func (c *Config) ExecTimeout() time.Duration {
	return time.Duration(c.Tools.Exec.Timeout) * time.Second
}
