// Package config loads application configuration with layered
// precedence: runtime overrides > environment > config file > defaults.
package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	List    ListConfig    `mapstructure:"list" yaml:"list"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// RPS throttles requests per second. Zero disables throttling.
	RPS float64 `mapstructure:"rps" yaml:"rps"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "json" or "console".
	Format string `mapstructure:"format" yaml:"format"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	// Backend is "fs" or "s3".
	Backend string `mapstructure:"backend" yaml:"backend"`

	FS FSConfig `mapstructure:"fs" yaml:"fs"`
	S3 S3Config `mapstructure:"s3" yaml:"s3"`
}

// FSConfig configures the filesystem backend.
type FSConfig struct {
	// BaseDir is the directory the key space is rooted at.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Region          string `mapstructure:"region" yaml:"region"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Profile         string `mapstructure:"profile" yaml:"profile"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
	MaxKeys         int    `mapstructure:"max_keys" yaml:"max_keys"`
}

// ListConfig configures listing behavior.
type ListConfig struct {
	// MaxKeys is the default page size for list operations.
	MaxKeys int `mapstructure:"max_keys" yaml:"max_keys"`

	// RPS throttles listing steps per second in deep traversals.
	// Zero disables throttling.
	RPS float64 `mapstructure:"rps" yaml:"rps"`
}
