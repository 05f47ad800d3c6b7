package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/sshfwd/sshfwd/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".sshfwd.yaml"
	// GlobalConfigDir is the directory for the global config.
	GlobalConfigDir = ".config/sshfwd"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads the config from the specified path, applies defaults, and
// merges connection settings from ~/.ssh/config for rules that omit them.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'sshfwd init' to create one, or point at it with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Config file has invalid structure",
			"Compare your file against the template from 'sshfwd init'")
	}

	cfg.ApplyDefaults()
	ApplySSHConfigDefaults(cfg)
	return cfg, nil
}

// Find locates the config file using the search order:
//  1. Explicit path (from --config flag)
//  2. .sshfwd.yaml in the current directory
//  3. .sshfwd.yaml in parent directories (stops at home or filesystem root)
//  4. ~/.config/sshfwd/config.yaml
//
// Returns the path to the config file, or empty string if none found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// Walk up to parent directories, stopping at home.
	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}

	// Global fallback.
	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}
