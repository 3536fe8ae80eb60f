package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-only-secret"

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	BucketDocuments string
	UseSSL          bool
	Region          string
	MaxUploadBytes  int64
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

type SecurityConfig struct {
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	ResetTokenTTL      time.Duration
	MinPasswordLen     int
	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration
}

type AppConfig struct {
	Environment      string
	ClientURL        string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	SMTP             SMTPConfig
	Security         SecurityConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("TENDERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// The default secret only exists so development works out of the box.
	// Production must supply its own; the default backfills even when the
	// env var is set but empty, so both cases are rejected here.
	if cfg.Environment == "production" {
		if cfg.Security.JWTSecret == "" || cfg.Security.JWTSecret == devJWTSecret {
			return nil, fmt.Errorf("security.jwtsecret is required in production")
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("clienturl", "http://localhost:3000")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.bucketdocuments", "tenderdesk-documents")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.maxuploadbytes", 25<<20)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "no-reply@tenderdesk.local")
	v.SetDefault("smtp.tls", true)

	v.SetDefault("security.jwtsecret", devJWTSecret)
	v.SetDefault("security.accesstokenttl", "15m")
	v.SetDefault("security.refreshtokenttl", "168h") // 7 days
	v.SetDefault("security.resettokenttl", "1h")
	v.SetDefault("security.minpasswordlen", 6)
	v.SetDefault("security.loginattemptlimit", 10)
	v.SetDefault("security.loginattemptwindow", "15m")
}
