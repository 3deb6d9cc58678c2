// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the application configuration as read from intelhub.yaml,
// INTELHUB_* environment variables and command-line flags.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Legacy   LegacyConfig   `mapstructure:"legacy" yaml:"legacy"`
	Data     DataConfig     `mapstructure:"data" yaml:"data"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Language string         `mapstructure:"language" yaml:"language"`
	Debug    bool           `mapstructure:"debug" yaml:"debug"`
}

// DatabaseConfig selects the relational backend.
type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// LegacyConfig locates the pre-migration users file.
type LegacyConfig struct {
	UsersFile string `mapstructure:"users_file" yaml:"users_file"`
}

// DataConfig locates the CSV datasets loaded by setup.
type DataConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// AuthConfig holds the credential policy and hashing parameters.
type AuthConfig struct {
	UsernamePolicy string `mapstructure:"username_policy" yaml:"username_policy"`
	PasswordMin    int    `mapstructure:"password_min" yaml:"password_min"`
	PasswordMax    int    `mapstructure:"password_max" yaml:"password_max"`
	Hasher         string `mapstructure:"hasher" yaml:"hasher"`
	BcryptCost     int    `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// Defaults returns the default value of every configuration key.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":        "sqlite",
		"database.dsn":         "DATA/intelligence_platform.db",
		"legacy.users_file":    "DATA/users.txt",
		"data.dir":             "DATA",
		"auth.username_policy": "permissive",
		"auth.password_min":    8,
		"auth.password_max":    50,
		"auth.hasher":          "bcrypt",
		"auth.bcrypt_cost":     12,
		"language":             "en",
		"debug":                false,
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Intelhub")
		default: // Linux, macOS, etc.
			configDir = "/etc/intelhub"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "intelhub")
	}

	return filepath.Join(configDir, "intelhub.yaml"), nil
}

// LoadConfig reads configuration into T. Precedence from lowest to highest:
// defaults, config file, environment, flags of cmd. The file is the one at
// additionalConfigFilePath when given, otherwise intelhub.yaml in the user
// config dir, the system config dir or the working directory.
//
// When no file was found (or the file is empty) the fully populated T is
// returned together with a viper.ConfigFileNotFoundError so callers can
// write a default file.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("intelhub")
	v.SetConfigType("yaml")
	if additionalConfigFilePath != nil {
		v.SetConfigFile(*additionalConfigFilePath)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	notFound := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
		notFound = true
	} else if fi, err := os.Stat(v.ConfigFileUsed()); err == nil && fi.Size() == 0 {
		notFound = true
	}

	v.SetEnvPrefix("intelhub")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if notFound {
		return c, viper.ConfigFileNotFoundError{}
	}
	return c, nil
}

// WriteConfigFile writes c as YAML to the user or system config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the DSN may carry a database password.
	return os.WriteFile(path, data, 0o600)
}
