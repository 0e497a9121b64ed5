package main

import (
	"context"
	"fmt"

	"github.com/vvangelov/brregservice/internal/app"
	"github.com/vvangelov/brregservice/internal/config"
	"github.com/vvangelov/brregservice/internal/logging"
	"github.com/vvangelov/brregservice/internal/server"
)

var (
	configs *config.Config
)

func init() {
	var err error
	configs, err = config.Load()
	if err != nil {
		logging.FatalNoCtx(err, nil, "failed to load configuration")
	}
}

func main() {
	logger, err := logging.New(configs.LogLevel)
	if err != nil {
		logging.FatalNoCtx(err, logging.Data{"level": configs.LogLevel}, "failed to build logger")
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	a, err := app.New(ctx, configs)
	if err != nil {
		logging.FatalNoCtx(err, logging.Data{"version": configs.Version}, "failed to start application")
	}
	defer a.Close()

	srv := server.New(fmt.Sprintf(":%d", configs.Port), a.Router())
	if err := srv.Run(ctx); err != nil {
		logging.Error(ctx, err, nil, "http server stopped")
	}
}
