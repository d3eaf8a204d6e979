package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "REPORTS"

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ReportsConfig struct {
	Dir      string `mapstructure:"dir"`
	Metadata string `mapstructure:"metadata"`
	Watch    bool   `mapstructure:"watch"`
}

type BackupConfig struct {
	Dir      string `mapstructure:"dir"`
	S3Bucket string `mapstructure:"s3_bucket"`
	S3Prefix string `mapstructure:"s3_prefix"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Reports ReportsConfig `mapstructure:"reports"`
	Backup  BackupConfig  `mapstructure:"backup"`
	Debug   bool          `mapstructure:"debug"`
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// New returns a viper instance with defaults and environment bindings applied.
// Flags may be bound onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("reports.dir", "reports")
	v.SetDefault("reports.metadata", "config/metadata.json")
	v.SetDefault("reports.watch", true)
	v.SetDefault("backup.dir", "backups")
	v.SetDefault("backup.s3_bucket", "")
	v.SetDefault("backup.s3_prefix", "reports")
	v.SetDefault("debug", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Plain names kept for deployments that predate the prefixed variables.
	_ = v.BindEnv("server.host", envPrefix+"_SERVER_HOST", "SERVER_HOST")
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "SERVER_PORT", "PORT")
	_ = v.BindEnv("debug", envPrefix+"_DEBUG", "DEBUG")

	return v
}

// Load reads the optional config file at path (or reports.yaml from the
// working directory or ./config) and unmarshals the merged configuration.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("reports")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Reports.Dir == "" {
		return nil, errors.New("reports.dir must not be empty")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}

	return &cfg, nil
}
