// Package cli wires the configured adapters into a ready-to-serve engine for the commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/concierge"
	"github.com/aretw0/concierge/internal/config"
	"github.com/aretw0/concierge/pkg/adapters/cts"
	"github.com/aretw0/concierge/pkg/adapters/file"
	loamadapter "github.com/aretw0/concierge/pkg/adapters/loam"
	"github.com/aretw0/concierge/pkg/adapters/memory"
	"github.com/aretw0/concierge/pkg/adapters/openai"
	"github.com/aretw0/concierge/pkg/adapters/redis"
	"github.com/aretw0/concierge/pkg/observability"
	"github.com/aretw0/concierge/pkg/persistence/middleware"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/aretw0/concierge/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ErrMissingAPIKey is returned when no planner can be built.
var ErrMissingAPIKey = errors.New("openai.api_key is required (set CONCIERGE_OPENAI_API_KEY or OPENAI_API_KEY)")

// App is a wired process: the engine plus what the transports need around it.
type App struct {
	Engine *concierge.Engine
	Store  ports.SessionStore

	// Metrics is nil when metrics are disabled.
	Metrics *prometheus.Registry

	closers []func() error
}

// Close releases the connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

type buildOptions struct {
	planner ports.Planner
}

// BuildOption adjusts Build.
type BuildOption func(*buildOptions)

// WithPlanner replaces the OpenAI planner, e.g. with a scripted one.
func WithPlanner(p ports.Planner) BuildOption {
	return func(o *buildOptions) {
		o.planner = p
	}
}

// Build creates the engine described by cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...BuildOption) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	app := &App{}
	store, locker, err := app.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store

	reg := registry.NewRegistry()
	if cfg.CTSEnabled() {
		client := cts.NewClient(cfg.CTS.APIV1, cfg.CTS.APIV2,
			cts.WithCityURL(cfg.CTS.CityURL),
			cts.WithFrontHost(cfg.CTS.FrontHost),
			cts.WithTimeout(cfg.CTS.Timeout),
			cts.WithLogger(logger),
		)
		if err := cts.Register(reg, client); err != nil {
			return nil, app.fail(err)
		}
	} else {
		logger.Warn("travel API not configured, agents run without tools")
	}

	planner := bo.planner
	if planner == nil {
		if cfg.OpenAI.APIKey == "" {
			return nil, app.fail(ErrMissingAPIKey)
		}
		popts := []openai.Option{
			openai.WithModel(cfg.OpenAI.Model),
			openai.WithTemperature(cfg.OpenAI.Temperature),
			openai.WithLogger(logger),
		}
		if cfg.OpenAI.BaseURL != "" {
			popts = append(popts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		planner = openai.New(cfg.OpenAI.APIKey, popts...)
	}

	hooks := observability.LogHooks(logger)
	if cfg.Metrics.Enabled {
		app.Metrics = prometheus.NewRegistry()
		app.Metrics.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := observability.NewMetrics(app.Metrics)
		if err != nil {
			return nil, app.fail(err)
		}
		hooks = hooks.Merge(m.Hooks())
	}

	engOpts := []concierge.Option{
		concierge.WithLogger(logger),
		concierge.WithStore(store),
		concierge.WithRegistry(reg),
		concierge.WithLifecycleHooks(hooks),
		concierge.WithMaxSteps(cfg.Engine.MaxSteps),
		concierge.WithToolConcurrency(cfg.Engine.ToolConcurrency),
		concierge.WithDefaultLocale(cfg.Locale),
	}
	if locker != nil {
		engOpts = append(engOpts, concierge.WithLocker(locker))
	}
	if cfg.Prompts.Dir != "" {
		prompts, err := loamadapter.Open(cfg.Prompts.Dir)
		if err != nil {
			return nil, app.fail(fmt.Errorf("failed to open prompts: %w", err))
		}
		engOpts = append(engOpts, concierge.WithPrompts(prompts))
	}

	eng, err := concierge.New(ctx, planner, engOpts...)
	if err != nil {
		return nil, app.fail(err)
	}
	app.Engine = eng
	logger.Debug("engine ready", "store", cfg.Store.Kind, "metrics", cfg.Metrics.Enabled, "prompts", cfg.Prompts.Dir)
	return app, nil
}

// OpenStore opens only the configured session store, for commands that do not talk to a planner.
func OpenStore(ctx context.Context, cfg *config.Config) (ports.SessionStore, *App, error) {
	app := &App{}
	store, _, err := app.openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	app.Store = store
	return store, app, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (ports.SessionStore, ports.DistributedLocker, error) {
	mws, err := protection(cfg.Store.Protect)
	if err != nil {
		return nil, nil, err
	}
	store, locker, err := a.openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return middleware.Chain(store, mws...), locker, nil
}

// protection builds the store middlewares; masking runs before encryption.
func protection(pc config.ProtectConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(pc.MaskedPatterns) > 0 {
		mw, err := middleware.NewPIIMiddleware(pc.MaskedPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if pc.EncryptionKey != "" {
		active, err := middleware.ParseKey(pc.EncryptionKey)
		if err != nil {
			return nil, err
		}
		var fallback [][]byte
		for _, k := range pc.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("fallback key: %w", err)
			}
			fallback = append(fallback, key)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return mws, nil
}

func (a *App) openBackend(ctx context.Context, cfg *config.Config) (ports.SessionStore, ports.DistributedLocker, error) {
	switch cfg.Store.Kind {
	case config.StoreFile:
		return file.New(cfg.Store.Dir), nil, nil
	case config.StoreRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		a.closers = append(a.closers, store.Close)
		return store, redis.NewLocker(store.Client(), redis.DefaultPrefix), nil
	default:
		return memory.NewStore(), nil, nil
	}
}

func (a *App) fail(err error) error {
	_ = a.Close()
	return err
}
