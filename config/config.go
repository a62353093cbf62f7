package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all dashboard configuration
type Config struct {
	App      AppConfig
	API      APIConfig
	Token    TokenConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Cache    CacheConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Dialog   DialogConfig
	Display  DisplayConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name       string
	Env        string
	Port       string
	InstanceID string // identifies this process in published events
	PublicURL  string // base of order tracking links encoded in QR codes
}

// APIConfig points at the remote restaurant API
type APIConfig struct {
	BaseURL    string
	MenusPath  string
	OrdersPath string
	UsersPath  string
	Timeout    time.Duration
}

// TokenConfig selects where the bearer token is persisted
type TokenConfig struct {
	Backend  string // file, redis, postgres
	FilePath string
	RedisKey string
	Table    string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

type CacheConfig struct {
	StaleTime           time.Duration
	FetchTimeout        time.Duration
	RefetchOnInvalidate bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxUploadBytes   int64
	CORSAllowOrigins []string
}

type DialogConfig struct {
	StrictEdit bool
	PreviewDir string
}

type DisplayConfig struct {
	Timezone          string
	NotificationLimit int
	OrderPageSize     int
}

// Location resolves the display timezone. Call after Load, which has validated it.
func (d DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with RESTODASH_ prefix (e.g., RESTODASH_API_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/restodash")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("RESTODASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("cache.refetch_on_invalidate", true)

	cfg := &Config{
		App: AppConfig{
			Name:       v.GetString("app.name"),
			Env:        v.GetString("app.env"),
			Port:       v.GetString("app.port"),
			InstanceID: v.GetString("app.instance_id"),
			PublicURL:  v.GetString("app.public_url"),
		},
		API: APIConfig{
			BaseURL:    v.GetString("api.base_url"),
			MenusPath:  v.GetString("api.menus_path"),
			OrdersPath: v.GetString("api.orders_path"),
			UsersPath:  v.GetString("api.users_path"),
			Timeout:    v.GetDuration("api.timeout"),
		},
		Token: TokenConfig{
			Backend:  v.GetString("token.backend"),
			FilePath: v.GetString("token.file_path"),
			RedisKey: v.GetString("token.redis_key"),
			Table:    v.GetString("token.table"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("kafka.enabled"),
			Brokers: splitList(v.GetStringSlice("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
			GroupID: v.GetString("kafka.group_id"),
		},
		Cache: CacheConfig{
			StaleTime:           v.GetDuration("cache.stale_time"),
			FetchTimeout:        v.GetDuration("cache.fetch_timeout"),
			RefetchOnInvalidate: v.GetBool("cache.refetch_on_invalidate"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxUploadBytes:   v.GetInt64("http.max_upload_bytes"),
			CORSAllowOrigins: splitList(v.GetStringSlice("http.cors_allow_origins")),
		},
		Dialog: DialogConfig{
			StrictEdit: v.GetBool("dialog.strict_edit"),
			PreviewDir: v.GetString("dialog.preview_dir"),
		},
		Display: DisplayConfig{
			Timezone:          v.GetString("display.timezone"),
			NotificationLimit: v.GetInt("display.notification_limit"),
			OrderPageSize:     v.GetInt("display.order_page_size"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList accepts both whitespace and comma separated env values
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "restodash"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.InstanceID == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "restodash"
		}
		cfg.App.InstanceID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}
	if cfg.App.PublicURL == "" {
		cfg.App.PublicURL = "http://localhost:" + cfg.App.Port
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:3000/api/v1"
	}
	if cfg.API.MenusPath == "" {
		cfg.API.MenusPath = "/menus"
	}
	if cfg.API.OrdersPath == "" {
		cfg.API.OrdersPath = "/orders"
	}
	if cfg.API.UsersPath == "" {
		cfg.API.UsersPath = "/users"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.Token.Backend == "" {
		cfg.Token.Backend = "file"
	}
	if cfg.Token.FilePath == "" {
		cfg.Token.FilePath = defaultTokenPath()
	}
	if cfg.Token.RedisKey == "" {
		cfg.Token.RedisKey = "restodash:token"
	}
	if cfg.Token.Table == "" {
		cfg.Token.Table = "client_state"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "restodash"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "order-events"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = cfg.App.InstanceID
	}
	if cfg.Cache.FetchTimeout == 0 {
		cfg.Cache.FetchTimeout = 20 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxUploadBytes == 0 {
		cfg.HTTP.MaxUploadBytes = 10 << 20
	}
	if cfg.Dialog.PreviewDir == "" {
		cfg.Dialog.PreviewDir = filepath.Join(os.TempDir(), "restodash-previews")
	}
	if cfg.Display.Timezone == "" {
		cfg.Display.Timezone = "Local"
	}
	if cfg.Display.NotificationLimit == 0 {
		cfg.Display.NotificationLimit = 50
	}
	if cfg.Display.OrderPageSize == 0 {
		cfg.Display.OrderPageSize = 3
	}
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".restodash-token"
	}
	return filepath.Join(dir, "restodash", "token")
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be http or https, got %q", c.API.BaseURL)
	}

	switch c.Token.Backend {
	case "file", "redis", "postgres":
	default:
		return fmt.Errorf("token.backend must be one of file, redis, postgres, got %q", c.Token.Backend)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka.enabled is true")
	}

	if c.Cache.StaleTime < 0 {
		return fmt.Errorf("cache.stale_time cannot be negative")
	}

	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		return fmt.Errorf("invalid display.timezone %q: %w", c.Display.Timezone, err)
	}

	if c.Display.OrderPageSize < 1 {
		return fmt.Errorf("display.order_page_size must be positive")
	}

	if c.App.Env == "production" {
		if u.Scheme != "https" {
			return fmt.Errorf("api.base_url must use https in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("http.cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the redis client
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
