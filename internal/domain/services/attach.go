package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
)

// RetryPolicy controls how attach attempts are repeated while the host renders
type RetryPolicy struct {
	InitialDelay time.Duration
	Interval     time.Duration
	// MaxAttempts bounds the attempts; 0 retries until the context ends
	MaxAttempts int
}

// RetryPolicyFromConfig builds a policy from the discovery config section
func RetryPolicyFromConfig(cfg entities.DiscoveryConfig) RetryPolicy {
	return RetryPolicy{
		InitialDelay: cfg.GetInitialDelay(),
		Interval:     cfg.GetRetryInterval(),
		MaxAttempts:  cfg.MaxAttempts,
	}
}

func (p RetryPolicy) interval() time.Duration {
	if p.Interval <= 0 {
		return time.Second
	}
	return p.Interval
}

// AttachWithRetry calls ctrl.Attach on the loop until it succeeds. Not-ready results
// are retried at a fixed interval; any other error, an exhausted attempt budget, or a
// cancelled context ends the loop.
func AttachWithRetry(ctx context.Context, loop *EventLoop, ctrl *NavigationController, policy RetryPolicy, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", "attach")

	wait := policy.InitialDelay
	for attempt := 1; ; attempt++ {
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("attaching: %w", ctx.Err())
			case <-timer.C:
			}
		}

		var attachErr error
		if err := loop.Call(ctx, func() { attachErr = ctrl.Attach() }); err != nil {
			return fmt.Errorf("attaching: %w", err)
		}

		if attachErr == nil {
			return nil
		}

		if !entities.IsNotReady(attachErr) {
			return fmt.Errorf("attaching: %w", attachErr)
		}

		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, attachErr)
		}

		logger.Debug("Region not ready, retrying",
			slog.Int("attempt", attempt),
			slog.String("reason", attachErr.Error()),
			slog.Duration("retry_in", policy.interval()),
		)
		wait = policy.interval()
	}
}
