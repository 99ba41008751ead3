package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/census-explorer/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Census API
	APIKey          string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL         string  `mapstructure:"base_url" yaml:"base_url"`
	Dataset         string  `mapstructure:"dataset" yaml:"dataset"`
	Year            int     `mapstructure:"year" yaml:"year"`
	HTTPTimeoutSec  int     `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RateLimitPerSec float64 `mapstructure:"rate_limit_per_sec" yaml:"rate_limit_per_sec"`

	// In-memory fetch cache
	CacheTTLMin int `mapstructure:"cache_ttl_min" yaml:"cache_ttl_min"`

	// Territories dropped before identifier parsing, matched on the state part of the place name.
	ExcludeTerritories []string `mapstructure:"exclude_territories" yaml:"exclude_territories"`

	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

const dirName = ".census-explorer"

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.census-explorer/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, dirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	return utils.SafeWriteFile(path, b)
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CENSUS")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "https://api.census.gov/data")
	v.SetDefault("dataset", "acs/acs5")
	v.SetDefault("year", 2018)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("rate_limit_per_sec", 2.0)
	v.SetDefault("cache_ttl_min", 60)
	v.SetDefault("exclude_territories", []string{"Puerto Rico"})
	v.SetDefault("output_dir", "")
	v.SetDefault("listen_addr", "127.0.0.1:8501")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return &c, nil
}
