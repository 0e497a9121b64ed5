package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vvangelov/brregservice/internal"
	"github.com/vvangelov/brregservice/internal/logging"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrNoDatabase is returned when a non-local postgres deployment has no way to connect.
var ErrNoDatabase = errors.New("config: DATABASE_URL or RDS_PROXY_ENDPOINT is required")

// CoreEnv holds the settings every deployment of the service carries.
type CoreEnv struct {
	Env       string `mapstructure:"ENV" validate:"required"`
	Service   string `mapstructure:"SERVICE" validate:"required"`
	Version   string `mapstructure:"VERSION"`
	AWSRegion string `mapstructure:"AWS_REGION" validate:"required"`
	Port      int    `mapstructure:"PORT" validate:"min=1,max=65535"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
}

type Config struct {
	CoreEnv `mapstructure:",squash"`
	Local   bool `mapstructure:"LOCAL"`

	DatabaseDriver   string `mapstructure:"DATABASE_DRIVER" validate:"oneof=postgres sqlite"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	SQLitePath       string `mapstructure:"SQLITE_PATH"`
	RDSProxyEndpoint string `mapstructure:"RDS_PROXY_ENDPOINT"`
	RDSProxyUser     string `mapstructure:"RDS_PROXY_USER"`
	RDSDBName        string `mapstructure:"RDS_DB_NAME"`

	RegistryBaseURL        string        `mapstructure:"REGISTRY_BASE_URL" validate:"required,url"`
	RegistryConnectTimeout time.Duration `mapstructure:"REGISTRY_CONNECT_TIMEOUT" validate:"gt=0"`
	RegistryTimeout        time.Duration `mapstructure:"REGISTRY_TIMEOUT" validate:"gt=0"`

	RedisAddr string        `mapstructure:"REDIS_ADDR"`
	LockTTL   time.Duration `mapstructure:"LOCK_TTL" validate:"gt=0"`
	NATSURL   string        `mapstructure:"NATS_URL"`
}

var keys = []string{
	"ENV", "SERVICE", "VERSION", "AWS_REGION", "PORT", "LOG_LEVEL", "LOCAL",
	"DATABASE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
	"RDS_PROXY_ENDPOINT", "RDS_PROXY_USER", "RDS_DB_NAME",
	"REGISTRY_BASE_URL", "REGISTRY_CONNECT_TIMEOUT", "REGISTRY_TIMEOUT",
	"REDIS_ADDR", "LOCK_TTL", "NATS_URL",
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{}
	if val, present := os.LookupEnv("LOCAL"); present {
		var local bool
		var err error
		if local, err = strconv.ParseBool(val); err != nil {
			logging.Error(context.Background(), err, nil, "failed to load configuration")
			return nil, err
		}
		c.Local = local
	}

	v := viper.New()
	v.SetDefault("PORT", 3000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("SQLITE_PATH", "./data/brreg.db")
	v.SetDefault("REGISTRY_BASE_URL", internal.RegistryEndpoint)
	v.SetDefault("REGISTRY_CONNECT_TIMEOUT", 3*time.Second)
	v.SetDefault("REGISTRY_TIMEOUT", 15*time.Second)
	v.SetDefault("LOCK_TTL", 10*time.Second)
	if c.Local {
		v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	if err := v.Unmarshal(c); err != nil {
		logging.Error(context.Background(), err, logging.Data{"local": c.Local}, "failed to populate config")
		return nil, err
	}
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))

	if err := validator.New().Struct(c); err != nil {
		logging.Error(context.Background(), err, logging.Data{"local": c.Local}, "invalid configuration")
		return nil, err
	}
	if !c.Local && c.DatabaseDriver == DriverPostgres && c.DatabaseURL == "" && c.RDSProxyEndpoint == "" {
		logging.Error(context.Background(), ErrNoDatabase, nil, "invalid configuration")
		return nil, ErrNoDatabase
	}
	return c, nil
}
