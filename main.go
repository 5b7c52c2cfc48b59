package main

import (
	"flag"

	"github.com/ghaggin/hospitalcms/internal/backend"
	"github.com/ghaggin/hospitalcms/internal/config"
	"github.com/ghaggin/hospitalcms/internal/metrics"
	"github.com/ghaggin/hospitalcms/internal/middleware"
	"github.com/ghaggin/hospitalcms/internal/portal"
	"github.com/ghaggin/hospitalcms/internal/repository"
	"github.com/ghaggin/hospitalcms/internal/template"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level

	return zcfg.Build()
}

func main() {
	var configPath = flag.String("config", "config/config.yaml", "path to the portal config file")
	flag.Parse()

	app := fx.New(
		fx.Supply(config.Path(*configPath)),
		fx.Provide(
			config.New,
			newLogger,
			metrics.New,
			repository.NewStore,
			middleware.NewSessionManager,
			backend.NewFromParams,
			template.NewRenderer,
			portal.New,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(portal.RegisterHooks),
	)

	app.Run()
}
