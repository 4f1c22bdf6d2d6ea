package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig HTTP server address
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (s ServerConfig) Addr() string {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig database connection. A DSN starting with postgres:// or
// postgresql:// selects the postgres driver, anything else is MySQL.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SessionConfig cookie session settings
type SessionConfig struct {
	Cookie  string        `mapstructure:"cookie"`
	Expires time.Duration `mapstructure:"expires"`
	// Secret signs the session cookie.
	Secret string `mapstructure:"secret"`
}

// RedisConfig Redis settings; empty Addr disables the reconciliation lock
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// RabbitMQConfig MQ settings; empty URL disables payment events
type RabbitMQConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

// GatewayConfig payment gateway settings
type GatewayConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	SecretKey   string        `mapstructure:"secret_key"`
	CallbackURL string        `mapstructure:"callback_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// UploadConfig product image storage
type UploadConfig struct {
	Dir       string `mapstructure:"dir"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// CartConfig cart membership rules
type CartConfig struct {
	// PerUserLines scopes the "already in cart" check to (user, product)
	// instead of the product id alone.
	PerUserLines bool `mapstructure:"per_user_lines"`
}

// LogConfig zap logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	// Mode is "development" (console) or "production" (json).
	Mode string `mapstructure:"mode"`
}

// ViewsConfig HTML templates
type ViewsConfig struct {
	Dir    string `mapstructure:"dir"`
	Reload bool   `mapstructure:"reload"`
}

// Config application configuration
type Config struct {
	Server      ServerConfig   `mapstructure:"server"`
	AdminServer ServerConfig   `mapstructure:"admin_server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Session     SessionConfig  `mapstructure:"session"`
	Redis       RedisConfig    `mapstructure:"redis"`
	RabbitMQ    RabbitMQConfig `mapstructure:"rabbitmq"`
	Gateway     GatewayConfig  `mapstructure:"gateway"`
	Upload      UploadConfig   `mapstructure:"upload"`
	Cart        CartConfig     `mapstructure:"cart"`
	Log         LogConfig      `mapstructure:"log"`
	Views       ViewsConfig    `mapstructure:"views"`
}

// DefaultConfig defaults good enough to run locally
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		AdminServer: ServerConfig{
			Host: "0.0.0.0",
			Port: 8081,
		},
		Database: DatabaseConfig{
			DSN: "goshop:goshop123@tcp(127.0.0.1:3306)/goshop?charset=utf8mb4&parseTime=True&loc=Local",
		},
		Session: SessionConfig{
			Cookie:  "goshop_session",
			Expires: 24 * time.Hour,
			Secret:  "fallback_secret_key",
		},
		RabbitMQ: RabbitMQConfig{
			Queue: "payment_events",
		},
		Gateway: GatewayConfig{
			BaseURL:     "https://api.paystack.co",
			CallbackURL: "http://127.0.0.1:8080/payment/verify",
			Timeout:     15 * time.Second,
		},
		Upload: UploadConfig{
			Dir:       "./web/static/products",
			URLPrefix: "/static/products",
		},
		Log: LogConfig{
			Level: "info",
			Mode:  "development",
		},
		Views: ViewsConfig{
			Dir:    "./web/views",
			Reload: false,
		},
	}
}

// Load reads .env (if present), then config.yaml under dir (if present), then
// SHOP_* environment variables. DATABASE_URL and SECRET_KEY are honoured as-is.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.dsn", "SHOP_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("session.secret", "SHOP_SESSION_SECRET", "SECRET_KEY")
	_ = v.BindEnv("gateway.secret_key", "SHOP_GATEWAY_SECRET_KEY", "PAYSTACK_SECRET_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every binary needs
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	if c.Session.Secret == "" {
		return errors.New("config: session.secret is required")
	}
	if c.Upload.Dir == "" {
		return errors.New("config: upload.dir is required")
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("admin_server.host", d.AdminServer.Host)
	v.SetDefault("admin_server.port", d.AdminServer.Port)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("session.cookie", d.Session.Cookie)
	v.SetDefault("session.expires", d.Session.Expires)
	v.SetDefault("session.secret", d.Session.Secret)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("rabbitmq.url", d.RabbitMQ.URL)
	v.SetDefault("rabbitmq.queue", d.RabbitMQ.Queue)
	v.SetDefault("gateway.base_url", d.Gateway.BaseURL)
	v.SetDefault("gateway.secret_key", d.Gateway.SecretKey)
	v.SetDefault("gateway.callback_url", d.Gateway.CallbackURL)
	v.SetDefault("gateway.timeout", d.Gateway.Timeout)
	v.SetDefault("upload.dir", d.Upload.Dir)
	v.SetDefault("upload.url_prefix", d.Upload.URLPrefix)
	v.SetDefault("cart.per_user_lines", d.Cart.PerUserLines)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.mode", d.Log.Mode)
	v.SetDefault("views.dir", d.Views.Dir)
	v.SetDefault("views.reload", d.Views.Reload)
}
