package config

import (
	"fmt"
	"time"

	"github.com/furukawa1020/furukawalabo1/pkg/config"
	"github.com/furukawa1020/furukawalabo1/pkg/logger"
	"go.uber.org/zap"
)

// Config holds the archive service configuration
type Config struct {
	Service struct {
		Name        string
		Version     string
		Environment string
		// ClientURL is the public frontend origin, used for CORS and checkout redirects
		ClientURL string
		// Currency is the site display currency used when a provider omits one
		Currency string
	}

	Server struct {
		HTTP struct {
			Host  string
			Port  int
			Debug bool
		}
	}

	Database DatabaseConfig

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}

	// Webhook holds shared secrets for inbound donation webhooks.
	// Secrets are used verbatim as HMAC keys and must never be logged.
	Webhook struct {
		BMCSecret string
	}

	Stripe struct {
		SecretKey     string
		WebhookSecret string
	}

	Admin struct {
		JWTSecret string
	}

	Sync struct {
		BaseURL      string
		WorkIDs      []string
		Delay        time.Duration
		FetchTimeout time.Duration
	}

	Log struct {
		Level  string
		Format string
		Output string
	}

	Logger *zap.Logger
}

// DatabaseConfig holds the PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// AppConfig is the process-wide configuration instance
var AppConfig *Config

// Load reads the archive service configuration and builds the logger
func Load() (*Config, error) {
	cfg, err := config.Load("archive")
	if err != nil {
		return nil, err
	}

	appConfig := &Config{}

	appConfig.Service.Name = cfg.GetString("service.name")
	appConfig.Service.Version = cfg.GetString("service.version")
	appConfig.Service.Environment = cfg.GetString("service.environment")
	appConfig.Service.ClientURL = cfg.GetString("service.client_url")
	appConfig.Service.Currency = cfg.GetString("service.currency")
	if appConfig.Service.Currency == "" {
		appConfig.Service.Currency = "JPY"
	}

	appConfig.Server.HTTP.Host = cfg.GetString("server.http.host")
	appConfig.Server.HTTP.Port = cfg.GetInt("server.http.port")
	appConfig.Server.HTTP.Debug = cfg.GetBool("server.http.debug")

	appConfig.Database.Host = cfg.GetString("database.host")
	appConfig.Database.Port = cfg.GetInt("database.port")
	appConfig.Database.Name = cfg.GetString("database.name")
	appConfig.Database.User = cfg.GetString("database.user")
	appConfig.Database.Password = cfg.GetString("database.password")
	appConfig.Database.SSLMode = cfg.GetString("database.ssl_mode")
	appConfig.Database.MaxOpenConns = cfg.GetInt("database.max_open_conns")
	appConfig.Database.MaxIdleConns = cfg.GetInt("database.max_idle_conns")
	appConfig.Database.ConnMaxLifetime = time.Duration(cfg.GetInt("database.conn_max_lifetime")) * time.Second

	appConfig.Redis.Host = cfg.GetString("redis.host")
	appConfig.Redis.Port = cfg.GetInt("redis.port")
	appConfig.Redis.Password = cfg.GetString("redis.password")
	appConfig.Redis.DB = cfg.GetInt("redis.db")

	appConfig.Webhook.BMCSecret = cfg.GetString("webhook.bmc_secret")

	appConfig.Stripe.SecretKey = cfg.GetString("stripe.secret_key")
	appConfig.Stripe.WebhookSecret = cfg.GetString("stripe.webhook_secret")

	appConfig.Admin.JWTSecret = cfg.GetString("admin.jwt_secret")

	appConfig.Sync.BaseURL = cfg.GetString("sync.base_url")
	appConfig.Sync.WorkIDs = cfg.GetStringSlice("sync.work_ids")
	appConfig.Sync.Delay = time.Duration(cfg.GetInt("sync.delay_ms")) * time.Millisecond
	if appConfig.Sync.Delay == 0 {
		appConfig.Sync.Delay = 500 * time.Millisecond
	}
	appConfig.Sync.FetchTimeout = time.Duration(cfg.GetInt("sync.fetch_timeout")) * time.Second
	if appConfig.Sync.FetchTimeout == 0 {
		appConfig.Sync.FetchTimeout = 10 * time.Second
	}

	appConfig.Log.Level = cfg.GetString("log.level")
	appConfig.Log.Format = cfg.GetString("log.format")
	appConfig.Log.Output = cfg.GetString("log.output")

	appConfig.Logger, err = logger.NewZapLogger(logger.Config{
		Level:       appConfig.Log.Level,
		Format:      appConfig.Log.Format,
		Output:      appConfig.Log.Output,
		Development: appConfig.Server.HTTP.Debug,
	})
	if err != nil {
		return nil, err
	}

	AppConfig = appConfig

	return appConfig, nil
}
