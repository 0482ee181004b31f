package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/anonymousbeefsteak-cloud/pkshow/internal/catalog"
	"github.com/anonymousbeefsteak-cloud/pkshow/internal/store"
)

var ErrInvalidBackup = errors.New("invalid backup document")

// Backup is the export of every persisted record except the kiosk cart.
// Missing sections are written as empty documents.
type Backup struct {
	Menu     json.RawMessage `json:"menu"`
	Addons   json.RawMessage `json:"addons"`
	Orders   json.RawMessage `json:"orders"`
	Settings json.RawMessage `json:"settings"`
	Options  json.RawMessage `json:"options"`
}

// backupSection ties a backup field to its key and the type it must decode to.
type backupSection struct {
	key      string
	empty    string
	field    func(*Backup) *json.RawMessage
	validate func([]byte) error
}

func decodesAs[T any](raw []byte) error {
	var v T
	return json.Unmarshal(raw, &v)
}

var backupSections = []backupSection{
	{store.KeyMenu, "[]", func(b *Backup) *json.RawMessage { return &b.Menu }, decodesAs[[]catalog.Category]},
	{store.KeyAddons, "[]", func(b *Backup) *json.RawMessage { return &b.Addons }, decodesAs[[]catalog.Item]},
	{store.KeyOrders, "[]", func(b *Backup) *json.RawMessage { return &b.Orders }, decodesAs[[]Order]},
	{store.KeySettings, "{}", func(b *Backup) *json.RawMessage { return &b.Settings }, decodesAs[catalog.Settings]},
	{store.KeyOptions, "{}", func(b *Backup) *json.RawMessage { return &b.Options }, decodesAs[catalog.OptionGroups]},
}

// Backup reads every record into one document.
func (s *OrderService) Backup(ctx context.Context) (*Backup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b Backup
	for _, sec := range backupSections {
		raw, err := s.store.Get(ctx, sec.key)
		switch {
		case errors.Is(err, store.ErrNotFound):
			raw = []byte(sec.empty)
		case err != nil:
			return nil, fmt.Errorf("backup %s: %w", sec.key, err)
		}
		*sec.field(&b) = raw
	}
	return &b, nil
}

// Restore writes back the sections present in b and returns the keys it
// wrote. Every section is checked before anything is written, so a
// malformed document leaves the store untouched.
func (s *OrderService) Restore(ctx context.Context, b Backup) ([]string, error) {
	type write struct {
		key string
		raw []byte
	}
	var writes []write
	for _, sec := range backupSections {
		raw := *sec.field(&b)
		if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		if err := sec.validate(raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBackup, sec.key, err)
		}
		writes = append(writes, write{sec.key, raw})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := make([]string, 0, len(writes))
	for _, w := range writes {
		if err := s.store.Put(ctx, w.key, w.raw); err != nil {
			return restored, fmt.Errorf("restore %s: %w", w.key, err)
		}
		restored = append(restored, w.key)
	}
	s.logger.Info("backup restored", zap.Strings("keys", restored))
	return restored, nil
}
