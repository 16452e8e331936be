package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// connectWithRetry retries fn with exponential backoff. It is used only while
// starting up; request paths never retry.
func connectWithRetry(ctx context.Context, log zerolog.Logger, name string, attempts uint64, base time.Duration, fn func(ctx context.Context) error) error {
	attempt := 0
	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(base))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Int("attempt", attempt).Msg("connection failed, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
}
