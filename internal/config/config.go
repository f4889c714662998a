package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"dirmerge/internal/conflict"
	"dirmerge/internal/diff"
	"dirmerge/internal/pipeline"

	"github.com/spf13/viper"
)

type FilterConfig struct {
	IgnoreList   []string `mapstructure:"ignore_list"`
	IgnoreRegex  string   `mapstructure:"ignore_regex"`
	IgnoreBinary bool     `mapstructure:"ignore_binary"`
}

type ResolveConfig struct {
	Strategy string `mapstructure:"strategy"`
}

type Config struct {
	Workers  int                  `mapstructure:"workers"`
	Filter   FilterConfig         `mapstructure:"filter"`
	Diff     diff.Options         `mapstructure:"diff"`
	Resolve  ResolveConfig        `mapstructure:"resolve"`
	Merge    pipeline.MergeConfig `mapstructure:"merge"`
	DBPath   string               `mapstructure:"db_path"`
	Port     int                  `mapstructure:"port"`
	Debounce time.Duration        `mapstructure:"debounce"`
}

var Default = Config{
	Workers: runtime.NumCPU(),
	Filter: FilterConfig{
		IgnoreList: []string{".git", ".DS_Store", "*.tmp", "*.swp", "*.dirmerge.tmp"},
	},
	Resolve:  ResolveConfig{Strategy: string(conflict.StrategyManual)},
	DBPath:   "dirmerge.db",
	Port:     9100,
	Debounce: 500 * time.Millisecond,
}

// Dir returns the directory holding the default config file.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".dirmerge"), nil
}

// Load reads the config file (the default location when file is empty),
// applies DIRMERGE_* environment overrides and validates the result.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetDefault("workers", Default.Workers)
	v.SetDefault("filter.ignore_list", Default.Filter.IgnoreList)
	v.SetDefault("filter.ignore_regex", Default.Filter.IgnoreRegex)
	v.SetDefault("filter.ignore_binary", Default.Filter.IgnoreBinary)
	v.SetDefault("diff.trim_whitespace", Default.Diff.TrimWhitespace)
	v.SetDefault("diff.collapse_whitespace", Default.Diff.CollapseWhitespace)
	v.SetDefault("diff.ignore_case", Default.Diff.IgnoreCase)
	v.SetDefault("resolve.strategy", Default.Resolve.Strategy)
	v.SetDefault("merge.output", Default.Merge.Output)
	v.SetDefault("merge.backup", Default.Merge.Backup)
	v.SetDefault("db_path", Default.DBPath)
	v.SetDefault("port", Default.Port)
	v.SetDefault("debounce", Default.Debounce)

	v.SetEnvPrefix("DIRMERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		_, notFound := errors.AsType[viper.ConfigFileNotFoundError](err)
		if file != "" || !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}

	strategy, err := conflict.ParseStrategy(c.Resolve.Strategy)
	if err != nil {
		return fmt.Errorf("invalid resolve.strategy: %w", err)
	}
	c.Resolve.Strategy = string(strategy)

	if c.Filter.IgnoreRegex != "" {
		if _, err := regexp.Compile(c.Filter.IgnoreRegex); err != nil {
			return fmt.Errorf("invalid filter.ignore_regex: %w", err)
		}
	}

	for _, pattern := range c.Filter.IgnoreList {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid filter.ignore_list pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// Settings maps the config onto the standard processors.
func (c *Config) Settings() pipeline.Settings {
	return pipeline.Settings{
		Filter: pipeline.FilterConfig{
			IgnoreList:  c.Filter.IgnoreList,
			IgnoreRegex: c.Filter.IgnoreRegex,
		},
		IgnoreBinary: c.Filter.IgnoreBinary,
		Diff:         c.Diff,
		Strategy:     conflict.Strategy(c.Resolve.Strategy),
		Merge:        c.Merge,
	}
}
