package config

import "time"

// Config holds server configuration values.
type Config struct {
	// Addr is the TCP listen address for the chat protocol.
	Addr string `mapstructure:"addr" yaml:"addr"`
	// AdminAddr is the listen address for the administrative HTTP API.
	// It defaults to loopback; the admin surface is not meant to be public.
	AdminAddr string `mapstructure:"admin_addr" yaml:"admin_addr"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	AuditLogPath string `mapstructure:"audit_log_path" yaml:"audit_log_path"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`

	// Channels is the set of valid channel names clients may join.
	Channels       []string `mapstructure:"channels" yaml:"channels"`
	DefaultChannel string   `mapstructure:"default_channel" yaml:"default_channel"`

	// AdminPassword gates the admin API login endpoint.
	AdminPassword string `mapstructure:"admin_password" yaml:"admin_password"`
	JWTSecret     string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer     string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience   string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":12345",
		AdminAddr:         "127.0.0.1:8466",
		DatabasePath:      "classcord.db",
		AuditLogPath:      "audit.log",
		LogLevel:          "info",
		Channels:          []string{"#general", "#admin", "#dev"},
		DefaultChannel:    "#general",
		AdminPassword:     "classcord-admin",
		JWTSecret:         "change-me-in-production",
		JWTIssuer:         "classcord",
		JWTAudience:       "classcord-admin",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}
