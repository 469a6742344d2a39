// Package config loads debugito's settings from a .debugito.yaml file
// (searched for the same way cobra/viper-based CLIs in this ecosystem
// do it), environment variables, and command-line flags, in that
// increasing order of priority.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/CastilloDel/debugito/internal/curated"
)

// Config holds every setting the REPL entry point needs before it can
// build a session.
type Config struct {
	// Binary is the executable to load at startup, if any.
	Binary string `mapstructure:"binary"`
	// Source lists script files to run at startup via the REPL's
	// source/src command, in order.
	Source []string `mapstructure:"source"`
	// Breakpoints lists startup breakpoints as "path:line" strings, an
	// alternative to a source script for the common case of always
	// wanting the same breakpoints.
	Breakpoints []string `mapstructure:"breakpoints"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
	// Prompt is the REPL's input prompt.
	Prompt string `mapstructure:"prompt"`
	// Radix is the base print formats variable values in: 2, 8, 10 or 16.
	Radix int `mapstructure:"radix"`
}

// Load reads configuration from cfgFile if given, otherwise searches the
// working directory, $HOME/.debugito.yaml and finally
// $HOME/.config/debugito/config.yaml, then layers on environment
// variables prefixed DEBUGITO_.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("prompt", "(debugito) ")
	v.SetDefault("radix", 10)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".debugito")
	}

	v.SetEnvPrefix("DEBUGITO")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, curated.Errorf("reading config file: %w", err)
		}
		if cfgFile == "" {
			if err := mergeXDGConfig(v); err != nil {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, curated.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// mergeXDGConfig looks for $HOME/.config/debugito/config.yaml once the
// primary .debugito.yaml search has come up empty, merging any settings it
// finds into v.
func mergeXDGConfig(v *viper.Viper) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	v.SetConfigFile(filepath.Join(home, ".config", "debugito", "config.yaml"))
	if err := v.MergeInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !os.IsNotExist(err) {
			return curated.Errorf("reading config file: %w", err)
		}
	}
	return nil
}
