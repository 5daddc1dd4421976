package redisclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"github.com/mufasadev/donation-ledger/pkg/util/repeat"
	"github.com/redis/go-redis/v9"
	"time"
)

const ClientTimeout = 5 * time.Second

// Options parses a redis:// or rediss:// URL and applies bounded timeouts and retries.
func Options(redisURL string) (*redis.Options, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.DialTimeout = ClientTimeout
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second
	opts.MaxRetries = 3
	opts.MinRetryBackoff = 100 * time.Millisecond
	opts.MaxRetryBackoff = time.Second

	if opts.TLSConfig != nil {
		opts.TLSConfig.MinVersion = tls.VersionTLS12
	}

	return opts, nil
}

// NewClient connects and pings, retrying up to maxConnAttempts times.
func NewClient(ctx context.Context, redisURL string, maxConnAttempts int) (*redis.Client, error) {
	opts, err := Options(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	err = repeat.Repeat(ctx, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, ClientTimeout)
		defer cancel()
		return rdb.Ping(pingCtx).Err()
	}, maxConnAttempts, ClientTimeout)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}
