// Package app wires configuration into the storage, lookup and HTTP layers.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"github.com/vvangelov/brregservice/internal/config"
	"github.com/vvangelov/brregservice/internal/events"
	"github.com/vvangelov/brregservice/internal/handler"
	"github.com/vvangelov/brregservice/internal/lock"
	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/lookup"
	"github.com/vvangelov/brregservice/internal/metrics"
	"github.com/vvangelov/brregservice/internal/registry"
	"github.com/vvangelov/brregservice/internal/storage"
	"github.com/vvangelov/brregservice/internal/storage/pg"
	"github.com/vvangelov/brregservice/internal/storage/sqlite"
)

// Store is a storage backend the application can own.
type Store interface {
	storage.Storage
	Ping(ctx context.Context) error
	Migrate() error
	Close()
}

type App struct {
	Config   *config.Config
	Storage  Store
	Lookup   *lookup.Service
	Handler  *handler.Handler
	registry *prometheus.Registry
	closers  []func()
}

// NewStore opens the backend selected by conf.DatabaseDriver.
func NewStore(ctx context.Context, conf *config.Config) (Store, error) {
	switch conf.DatabaseDriver {
	case config.DriverSQLite:
		cfg := sqlite.DefaultConfig()
		cfg.DBPath = conf.SQLitePath
		s, err := sqlite.New(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := pg.New(ctx, conf)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", conf.DatabaseDriver)
	}
}

// New builds every dependency of the service. Postgres migrations are applied on
// start.
func New(ctx context.Context, conf *config.Config) (*App, error) {
	a := &App{Config: conf, registry: prometheus.NewRegistry()}

	stg, err := NewStore(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to start storage connection: %w", err)
	}
	a.Storage = stg
	a.closers = append(a.closers, stg.Close)
	if conf.DatabaseDriver == config.DriverPostgres {
		if err := stg.Migrate(); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(a.registry)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []lookup.OptionFunc{lookup.WithMetrics(m)}
	if conf.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: conf.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		opts = append(opts, lookup.WithLocker(lock.NewRedisLocker(client, conf.LockTTL)))
	}
	if conf.NATSURL != "" {
		pub, err := events.Connect(conf.NATSURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		opts = append(opts, lookup.WithPublisher(pub))
	}

	reg := registry.New(conf.RegistryBaseURL, registry.WithTimeouts(conf.RegistryConnectTimeout, conf.RegistryTimeout))
	a.Lookup = lookup.New(reg, stg, opts...)
	a.Handler = handler.New(a.Lookup, stg)

	logging.Info(ctx, logging.Data{
		"driver":   conf.DatabaseDriver,
		"registry": conf.RegistryBaseURL,
		"redis":    conf.RedisAddr != "",
		"nats":     conf.NATSURL != "",
	}, "application wired")
	return a, nil
}

func (a *App) Router() http.Handler {
	r := mux.NewRouter()
	a.Handler.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
