package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/banjito/ampcalibration/internal/retry"

	"go.uber.org/zap"
)

// Bootstrap validates cfg, waits for the provider to answer its health
// check, and resolves handle with a ready Client. Until Bootstrap succeeds
// the handle stays unresolved and callers observe the client as not
// initialized.
func Bootstrap(
	ctx context.Context,
	logger *zap.Logger,
	cfg Config,
	handle *Handle,
	policy retry.Policy,
	options ...Option,
) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("bootstrap provider; error: %w", err)
	}

	client := NewClient(logger, cfg, options...)

	policy.Notify = func(err error, wait time.Duration) {
		logger.Info(
			"[Startup] waiting for provider",
			zap.String("url", client.url),
			zap.Duration("retry", wait),
			zap.Error(err),
		)
	}
	if _, err := retry.Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, client.Health(ctx)
	}); err != nil {
		return fmt.Errorf("bootstrap provider; url: %s, error: %w", client.url, err)
	}

	handle.Resolve(client)
	logger.Info("[Startup] provider client initialized", zap.String("url", client.url))
	return nil
}
