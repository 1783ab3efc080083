package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Audit  AuditConfig  `mapstructure:"audit"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DBConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

// AuditConfig locates the audit inputs and outputs. Source selects where
// the deck comes from: "csv" or "mysql".
type AuditConfig struct {
	Source      string `mapstructure:"source"`
	PolicyPath  string `mapstructure:"policy_path"`
	OrdersPath  string `mapstructure:"orders_path"`
	HotlistPath string `mapstructure:"hotlist_path"`
	ResultsDir  string `mapstructure:"results_dir"`
	Username    string `mapstructure:"username"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig loads configuration from config.yaml and environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.deckaudit/")
	v.AddConfigPath("/etc/deckaudit/")

	// Enable environment variable override with DECKAUDIT_ prefix
	v.SetEnvPrefix("DECKAUDIT")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
