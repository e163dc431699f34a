package app

import (
	"context"
	"errors"
	"net"
	"strings"

	"go.uber.org/zap"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/config"
)

type App struct {
	logger *zap.Logger
}

type ServeConfig struct {
	ConfigPath string
	Overrides  []ConfigOverride
	// OnReady fires once the transport accepts traffic. addr is nil for stdio.
	OnReady func(addr net.Addr)
}

type ValidateConfig struct {
	ConfigPath string
	Overrides  []ConfigOverride
}

func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{logger: logger}
}

// Serve loads configuration, wires the runtime and blocks until ctx is done.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	resolved, err := a.LoadConfig(ctx, cfg.ConfigPath, cfg.Overrides...)
	if err != nil {
		return err
	}

	application, err := InitializeApplication(ctx, resolved, LoggingConfig{Logger: a.logger})
	if err != nil {
		return err
	}
	application.onReady = cfg.OnReady
	return application.Run()
}

// LoadConfig resolves the config at path and applies overrides before
// validating the result.
func (a *App) LoadConfig(ctx context.Context, path string, overrides ...ConfigOverride) (domain.Config, error) {
	cfg, err := config.NewLoader(a.logger).Load(ctx, path)
	if err != nil {
		return domain.Config{}, err
	}
	if len(overrides) == 0 {
		return cfg, nil
	}
	for _, override := range overrides {
		if override != nil {
			override(&cfg)
		}
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return domain.Config{}, errors.New(strings.Join(errs, "; "))
	}
	return cfg, nil
}
