package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"netreliability/migrations"
	"netreliability/pkg/apperror"
	"netreliability/pkg/cache"
	"netreliability/pkg/config"
	"netreliability/pkg/database"
	"netreliability/pkg/logger"
	"netreliability/pkg/metrics"
	"netreliability/pkg/telemetry"
	"netreliability/services/reliability-svc/internal/repository"
	"netreliability/services/reliability-svc/internal/service"
)

// globalOptions флаги корневой команды
type globalOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool
}

// app состояние процесса на время одной команды. Хранилище и кэш
// поднимаются при первом обращении к сервису.
type app struct {
	cfg     *config.Config
	metrics *metrics.Metrics

	svc     *service.ReliabilityService
	closers []func()
}

var metricsOnce sync.Once

// newApp загружает конфигурацию и поднимает логирование, трассировку и метрики
func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	var loaderOpts []config.LoaderOption
	if opts.configPath != "" {
		if _, err := os.Stat(opts.configPath); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "config file not found").
				WithField("config")
		}
		loaderOpts = append(loaderOpts, config.WithConfigPaths(opts.configPath))
	}

	cfg, err := config.NewLoader(loaderOpts...).Load()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "invalid configuration")
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	a := &app{cfg: cfg}

	// Телеметрия
	tp, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.App, cfg.Tracing))
	if err != nil {
		logger.Warn("failed to init telemetry", "error", err)
	} else {
		a.onClose(func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Warn("failed to shutdown telemetry", "error", err)
			}
		})
	}

	// Метрики регистрируются в глобальном реестре один раз на процесс
	metricsOnce.Do(func() {
		m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		prometheus.MustRegister(metrics.NewRuntimeCollector(cfg.Metrics.Namespace, cfg.Metrics.Subsystem))
		m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	})
	a.metrics = metrics.Get()

	if cfg.Metrics.Enabled {
		mctx, cancel := context.WithCancel(ctx)
		a.onClose(cancel)
		go func() {
			if err := metrics.StartMetricsServer(mctx, cfg.Metrics.Port); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
		logger.Debug("metrics server started", "port", cfg.Metrics.Port)
	}

	return a, nil
}

// Service возвращает сервис, при первом вызове подключая базу и кэш
func (a *app) Service(ctx context.Context) (*service.ReliabilityService, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	cfg := a.cfg
	opts := []service.Option{service.WithMetrics(a.metrics)}

	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.onClose(db.Close)

		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(
				ctx,
				db.Pool(),
				&cfg.Database,
				migrations.PostgresMigrations,
				migrations.PostgresDir,
			); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		opts = append(opts, service.WithRepository(repository.NewPostgresRunRepository(db)))
	}

	if cfg.Cache.Enabled {
		c, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			// без кэша оценки просто считаются заново
			logger.Warn("result cache disabled", "driver", cfg.Cache.Driver, "error", err)
		} else {
			a.onClose(func() { _ = c.Close() })
			opts = append(opts, service.WithCache(c, cfg.Cache.DefaultTTL))
		}
	}

	a.svc = service.NewReliabilityService(opts...)
	return a.svc, nil
}

// HistoryService сервис с постоянным хранилищем прогонов
func (a *app) HistoryService(ctx context.Context) (*service.ReliabilityService, error) {
	if !a.cfg.Database.Enabled {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument,
			"run history requires database.enabled", "database.enabled")
	}
	return a.Service(ctx)
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close освобождает ресурсы в обратном порядке
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
