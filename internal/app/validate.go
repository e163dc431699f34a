package app

import (
	"context"

	"go.uber.org/zap"
)

// ValidateConfig checks the configuration and the tool registry without
// serving or contacting the upstream API.
func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) error {
	logger := NewLogging(LoggingConfig{Logger: a.logger}).Logger

	resolved, err := a.LoadConfig(ctx, cfg.ConfigPath, cfg.Overrides...)
	if err != nil {
		return err
	}

	reg, err := NewRegistry()
	if err != nil {
		return err
	}

	logger.Info("configuration validated",
		zap.String("config", cfg.ConfigPath),
		zap.String("base_url", resolved.BaseURL),
		zap.Int("tools", len(reg.Tools())),
		zap.Int("resources", len(reg.Resources())),
	)
	return nil
}
