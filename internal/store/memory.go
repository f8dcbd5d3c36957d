package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the sheet in process memory. Row 0 is the header.
// Used for local development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	sheet [][]any
}

// NewMemoryStore returns a store holding only the header row.
func NewMemoryStore() *MemoryStore {
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	return &MemoryStore{sheet: [][]any{header}}
}

func (m *MemoryStore) Open(ctx context.Context) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryTable{store: m}, nil
}

func (m *MemoryStore) EnsureSchema(context.Context) error { return nil }

func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryStore) Close() {}

// Len reports the number of rows including the header.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sheet)
}

// Raw returns a copy of row i (0 is the header).
func (m *MemoryStore) Raw(i int) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.sheet[i]))
	copy(out, m.sheet[i])
	return out
}

type memoryTable struct {
	store *MemoryStore
}

func (t *memoryTable) AppendRow(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkWidth(row); err != nil {
		return err
	}
	cp := make([]any, len(row))
	copy(cp, row)

	t.store.mu.Lock()
	t.store.sheet = append(t.store.sheet, cp)
	t.store.mu.Unlock()
	return nil
}

func (t *memoryTable) Rows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	// Skip the header row.
	out := make([]Row, 0, len(t.store.sheet)-1)
	for _, r := range t.store.sheet[1:] {
		cp := make(Row, len(r))
		copy(cp, r)
		out = append(out, cp)
	}
	return out, nil
}

func (t *memoryTable) Close() error { return nil }
