package files

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "energycli/internal/errors"
	"energycli/pkg/contracts/domain"
)

// ErrMissingSource reports that no summary has been persisted yet.
var ErrMissingSource = errors.New("summary blob does not exist")

// Store is the blob store the pipeline writes and the query service reads.
type Store interface {
	Save(ctx context.Context, summary domain.Summary) error
	Load(ctx context.Context) (domain.Summary, error)
	// Location names where the blob lives, for logs and command output.
	Location() string
}

// Metadata describes how a persisted summary was produced.
type Metadata struct {
	Entity    string `json:"entity,omitempty"`
	Window    int    `json:"window,omitempty"`
	ShareMode string `json:"share_mode,omitempty"`
}

// Envelope is the on-disk layout of a FileStore blob.
type Envelope struct {
	Format      string         `json:"format"`
	Entity      string         `json:"entity,omitempty"`
	Window      int            `json:"window,omitempty"`
	ShareMode   string         `json:"share_mode,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	Count       int            `json:"count"`
	Checksum    string         `json:"checksum,omitempty"`
	Summary     domain.Summary `json:"summary"`
}

func missingSource(location string) error {
	return apperrors.NewNotFoundError("summary", ErrMissingSource).WithContext("location", location)
}

// MemoryStore keeps one summary in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	summary domain.Summary
	saved   bool
	saves   int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, summary domain.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.summary = summary.Clone()
	if m.summary == nil {
		m.summary = domain.Summary{}
	}
	m.saved = true
	m.saves++
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context) (domain.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.saved {
		return nil, missingSource("memory")
	}
	return m.summary.Clone(), nil
}

// Location implements Store.
func (m *MemoryStore) Location() string {
	return "memory"
}

// Saves reports how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
