package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// global configuration structure
type Config struct {
	Wall     WallConfig     `mapstructure:"wall"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Database DatabaseConfig `mapstructure:"database"`
	Tables   TablesConfig   `mapstructure:"tables"`
}

// mailing-list application settings
type WallConfig struct {
	AppNumber            string `mapstructure:"app_number"`
	CommandPrefix        string `mapstructure:"command_prefix"`
	MinShortcode         int    `mapstructure:"min_shortcode"`
	MaxShortcode         int    `mapstructure:"max_shortcode"`
	AllowListCreation    bool   `mapstructure:"allow_list_creation"`
	ConfirmMaxAgeMinutes int    `mapstructure:"confirm_max_age_minutes"`
	Sender               string `mapstructure:"sender"`
}

// inbound webhook server and outbound gateway client configuration
type GatewayConfig struct {
	ListenPort         string `mapstructure:"listen_port"`
	WebhookPath        string `mapstructure:"webhook_path"`
	DebugPath          string `mapstructure:"debug_path"`
	CertFile           string `mapstructure:"cert_file"`
	KeyFile            string `mapstructure:"key_file"`
	SendURL            string `mapstructure:"send_url"`
	SendTimeoutSeconds int    `mapstructure:"send_timeout_seconds"`
	AuthToken          string `mapstructure:"auth_token"`
}

// optional Telegram bridge configuration
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

// logging configuration
type LoggerConfig struct {
	Directory string            `mapstructure:"directory"`
	Rotation  LogRotationConfig `mapstructure:"rotation"`
	Level     string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// relation names used by the persistent store
type TablesConfig struct {
	Lists         string `mapstructure:"lists"`
	Members       string `mapstructure:"members"`
	Owners        string `mapstructure:"owners"`
	Confirmations string `mapstructure:"confirmations"`
	Names         string `mapstructure:"names"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Wall.AppNumber == "" {
		return fmt.Errorf("wall.app_number is required")
	}
	if len(c.Wall.CommandPrefix) != 1 {
		return fmt.Errorf("wall.command_prefix must be a single character")
	}
	if c.Wall.MinShortcode > c.Wall.MaxShortcode {
		return fmt.Errorf("wall.min_shortcode must not exceed wall.max_shortcode")
	}
	if c.Wall.ConfirmMaxAgeMinutes < 0 {
		return fmt.Errorf("wall.confirm_max_age_minutes must not be negative")
	}

	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	// Relation names end up interpolated into SQL by the ORM, so they are
	// checked once here rather than per query.
	for _, name := range []string{
		c.Tables.Lists, c.Tables.Members, c.Tables.Owners,
		c.Tables.Confirmations, c.Tables.Names,
	} {
		if !isAlphanumeric(name) {
			return fmt.Errorf("table name %q must be non-empty and alphanumeric", name)
		}
	}

	return nil
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("wall.command_prefix", "*")
	v.SetDefault("wall.min_shortcode", 1001)
	v.SetDefault("wall.max_shortcode", 9999)
	v.SetDefault("wall.allow_list_creation", true)
	v.SetDefault("wall.confirm_max_age_minutes", 60)
	v.SetDefault("wall.sender", "log")

	v.SetDefault("gateway.listen_port", "8080")
	v.SetDefault("gateway.webhook_path", "/messages")
	v.SetDefault("gateway.debug_path", "/debug")
	v.SetDefault("gateway.cert_file", "")
	v.SetDefault("gateway.key_file", "")
	v.SetDefault("gateway.send_timeout_seconds", 5)

	v.SetDefault("telegram.enabled", false)

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "smswall.db")
	v.SetDefault("database.charset", "utf8mb4")

	v.SetDefault("tables.lists", "lists")
	v.SetDefault("tables.members", "members")
	v.SetDefault("tables.owners", "owners")
	v.SetDefault("tables.confirmations", "confirmations")
	v.SetDefault("tables.names", "names")
}
