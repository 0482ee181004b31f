// Package store is the kiosk's key-value persistence boundary. Every record
// (menu, orders, settings, cart) is a whole JSON value under its own key and
// is overwritten as a unit.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by the kiosk. Values are JSON documents.
const (
	KeyMenu         = "steakhouse_menu"
	KeyAddons       = "steakhouse_addons"
	KeyOptions      = "steakhouse_options"
	KeyOrders       = "steakhouse_orders"
	KeySettings     = "steakhouse_settings"
	KeyRecentOrders = "steakhouse-recent-orders"
	KeyCart         = "steakhouse_cart"
)

// AllKeys lists every key included in a backup.
var AllKeys = []string{KeyMenu, KeyAddons, KeyOptions, KeyOrders, KeySettings}

// ErrNotFound is returned when a key has never been written or was deleted.
var ErrNotFound = errors.New("key not found")

// Store reads and writes whole values by key.
// Satisfied by *Memory, *File and *Postgres.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the value at key into v. It returns ErrNotFound when the key
// is absent and a wrapped decode error when the stored value is malformed.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// PutJSON encodes v and writes it at key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// LoadOr returns the decoded value at key, or fallback when the key is absent
// or its value cannot be decoded. Only store failures are returned as errors.
func LoadOr[T any](ctx context.Context, s Store, key string, fallback T) (T, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fallback, nil
		}
		return fallback, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback, nil
	}
	return v, nil
}

// Exists reports whether key holds a value.
func Exists(ctx context.Context, s Store, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}
