// Dailyfacts - Personalized Daily Fact Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dailyfacts

// Package cache provides the key-value accelerator consulted by the
// profile builder.
//
// A Store holds opaque bytes with a per-entry TTL. Backends:
//
//   - memory: in-process map with lazy and periodic expiry
//   - badger: embedded dgraph-io/badger database using native entry TTLs
//   - redis:  shared go-redis client, for multiple service replicas
//   - none:   always misses
//
// Callers must produce identical results with any backend, including
// none; the cache only saves repository reads. GetJSON and SetJSON wrap a
// Store with goccy/go-json encoding.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/dailyfacts/internal/config"
)

// Store is a byte-oriented cache with per-entry TTLs.
type Store interface {
	// Get returns the value and true when the key is present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// New builds the store selected by cfg.Type.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Type {
	case config.CacheTypeNone, "":
		return Noop{}, nil
	case config.CacheTypeMemory:
		return NewMemory(), nil
	case config.CacheTypeBadger:
		b, err := NewBadger(BadgerOptions{Dir: cfg.BadgerDir, InMemory: cfg.BadgerInMemory}, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.CacheTypeRedis:
		r, err := NewRedis(ctx, RedisOptions{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: cfg.RedisDialTimeout,
			KeyPrefix:   cfg.RedisKeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

// GetJSON decodes the cached value for key into dst.
// A value that fails to decode is treated as a miss and removed.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = s.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return s.Set(ctx, key, data, ttl)
}

// Noop is a Store that never holds anything.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (Noop) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }

var (
	_ Store = Noop{}
	_ Store = (*Memory)(nil)
	_ Store = (*Badger)(nil)
	_ Store = (*Redis)(nil)
)
