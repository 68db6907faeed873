// internal/common/database/namespace.go
package database

import (
	"context"
	"fmt"

	"student-intake/internal/common/config"
	"student-intake/internal/common/metrics"
)

// Namespace is a flat key-value store holding opaque serialized values.
// Get reports found=false for a key that was never written.
type Namespace interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open builds the namespace selected by cfg.Backend. Network backends are
// pinged before they are returned.
func Open(ctx context.Context, cfg config.StoreConfig) (Namespace, error) {
	var (
		ns  Namespace
		err error
	)

	switch cfg.Backend {
	case config.BackendMemory, "":
		ns = NewMemory()
	case config.BackendRedis:
		var rc *RedisClient
		rc, err = NewRedis(cfg.Redis, cfg.Namespace)
		if err == nil {
			if err = rc.Ping(ctx); err != nil {
				_ = rc.Close()
			}
		}
		ns = rc
	case config.BackendPostgres:
		var pc *PostgresClient
		pc, err = NewPostgres(cfg.Postgres, cfg.Namespace)
		if err == nil {
			if err = pc.Ping(ctx); err == nil {
				err = pc.EnsureSchema(ctx)
			}
			if err != nil {
				_ = pc.Close()
			}
		}
		ns = pc
	case config.BackendSQLite:
		ns, err = OpenSQLite(cfg.SQLite.Path, cfg.Namespace)
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s namespace: %w", cfg.Backend, err)
	}

	backend := cfg.Backend
	if backend == "" {
		backend = config.BackendMemory
	}
	return Instrument(ns, backend), nil
}

// Instrument counts every call made through ns in the store operation metric.
func Instrument(ns Namespace, backend string) Namespace {
	return &instrumented{next: ns, backend: backend}
}

type instrumented struct {
	next    Namespace
	backend string
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found, err := i.next.Get(ctx, key)
	metrics.RecordStoreOperation(i.backend, "get", err)
	return value, found, err
}

func (i *instrumented) Put(ctx context.Context, key string, value []byte) error {
	err := i.next.Put(ctx, key, value)
	metrics.RecordStoreOperation(i.backend, "put", err)
	return err
}

func (i *instrumented) Close() error {
	return i.next.Close()
}

func prefixed(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}
