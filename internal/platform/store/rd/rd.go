// Package rd provides a redis client used by the store cache seam
package rd

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures redis connectivity
type Config struct {
	Addr     string
	DB       int
	Password string

	// DialTimeout bounds the initial connect, default 5s
	DialTimeout time.Duration
}

// RD wraps a go-redis client
type RD struct {
	Client *redis.Client
}

// Open dials redis and verifies the connection with a ping
func Open(ctx context.Context, cfg Config) (*RD, error) {
	if cfg.Addr == "" {
		return nil, errors.New("rd: empty addr")
	}
	dt := cfg.DialTimeout
	if dt <= 0 {
		dt = 5 * time.Second
	}

	cl := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DB:          cfg.DB,
		Password:    cfg.Password,
		DialTimeout: dt,
	})

	pctx, cancel := context.WithTimeout(ctx, dt)
	defer cancel()
	if err := cl.Ping(pctx).Err(); err != nil {
		_ = cl.Close()
		return nil, err
	}
	return &RD{Client: cl}, nil
}

// Ping verifies connectivity
func (r *RD) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("rd: ping on closed client")
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the client
func (r *RD) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
