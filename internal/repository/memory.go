// Package repository implements record stores for the admin seeder:
// MongoDB, PostgreSQL, SQLite and an in-memory store.
//
// Each store keys records by one identifying field and satisfies
// reconcile.Store. Stores that can describe their own schema also satisfy
// schema.Provider.
//
// Import Path: kv-shepherd.io/adminseed/internal/repository
package repository

import (
	"context"
	"fmt"
	"sync"

	"kv-shepherd.io/adminseed/internal/domain"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
)

// Memory is a map-backed store. Records are copied on the way in and out.
type Memory struct {
	mu       sync.Mutex
	keyField string
	records  map[string]domain.Record
}

// NewMemory creates an empty in-memory store keyed by keyField.
func NewMemory(keyField string) *Memory {
	return &Memory{
		keyField: keyField,
		records:  make(map[string]domain.Record),
	}
}

// FindOne implements reconcile.Store.
func (m *Memory) FindOne(_ context.Context, key string) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", m.keyField, key, apperrors.ErrNotFound)
	}
	return rec.Clone(), nil
}

// Create implements reconcile.Store.
func (m *Memory) Create(_ context.Context, rec domain.Record) error {
	key, err := recordKey(rec, m.keyField)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[key]; exists {
		return fmt.Errorf("%s %q: %w", m.keyField, key, apperrors.ErrAlreadyExists)
	}
	m.records[key] = rec.Clone()
	return nil
}

// Save implements reconcile.Store.
func (m *Memory) Save(_ context.Context, key string, changes domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return fmt.Errorf("%s %q: %w", m.keyField, key, apperrors.ErrNotFound)
	}
	m.records[key] = domain.Merge(rec, changes)
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// recordKey extracts the identifying key a record is stored under.
func recordKey(rec domain.Record, keyField string) (string, error) {
	key, ok := rec.String(keyField)
	if !ok || key == "" {
		return "", fmt.Errorf("record has no string %q value", keyField)
	}
	return key, nil
}
