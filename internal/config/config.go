package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Admin    *AdminConfig    `mapstructure:"admin"`
	Ticket   *TicketConfig   `mapstructure:"ticket"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	LogLevel           string        `mapstructure:"log_level"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
	ExposeErrorDetails bool          `mapstructure:"expose_error_details"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DB           string `mapstructure:"db"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// AdminConfig seeds the first admin account. Seeding is skipped when Email is empty.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Name     string `mapstructure:"name"`
	Password string `mapstructure:"password"`
}

type TicketConfig struct {
	QRSize int `mapstructure:"qr_size"`
}

func (c *AppConfig) Validate() error {
	if err := validation.ValidateStruct(
		c.API,
		validation.Field(&c.API.Environment, validation.Required, validation.In("development", "test", "production")),
		validation.Field(&c.API.Port, validation.Required),
		validation.Field(&c.API.JWTSigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.API.JWTTTL, validation.Required),
	); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if err := validation.ValidateStruct(
		c.Gin,
		validation.Field(&c.Gin.Mode, validation.In("debug", "release", "test")),
	); err != nil {
		return fmt.Errorf("gin: %w", err)
	}

	if err := validation.ValidateStruct(
		c.Ticket,
		validation.Field(&c.Ticket.QRSize, validation.Min(64), validation.Max(1024)),
	); err != nil {
		return fmt.Errorf("ticket: %w", err)
	}

	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults make every key known to viper so env overrides reach Unmarshal.
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.log_level", "info")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{})
	v.SetDefault("api.jwt_signing_key", "")
	v.SetDefault("api.jwt_ttl", "24h")
	v.SetDefault("api.expose_error_details", false)
	v.SetDefault("gin.mode", "release")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "events")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("admin.password", "")
	v.SetDefault("ticket.qr_size", 256)

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var conf AppConfig
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	return &conf, nil
}

// Load reads the YAML file at path and overlays environment variables,
// e.g. API_PORT overrides api.port.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// Watch calls onChange with the freshly decoded config every time the file at
// path is written. Invalid edits are reported through onError and otherwise ignored.
func Watch(path string, onChange func(*AppConfig), onError func(error)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		conf, err := decode(v)
		if err != nil {
			onError(fmt.Errorf("reloading %s -> %w", e.Name, err))
			return
		}
		onChange(conf)
	})
	v.WatchConfig()

	return nil
}
