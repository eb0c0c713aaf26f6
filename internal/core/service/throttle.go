package service

import "context"

// LoginThrottle counts failed password checks per key (Redis in production).
type LoginThrottle interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type noopThrottle struct{}

func (noopThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }

func (noopThrottle) RecordFailure(context.Context, string) error { return nil }

func (noopThrottle) Reset(context.Context, string) error { return nil }
