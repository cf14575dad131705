package store

import (
	"context"
	"errors"
	"fmt"
)

// DefaultQuotaBytes matches the per-origin limit of common browser storage.
const DefaultQuotaBytes = 5 << 20

// ErrQuotaExceeded is returned when a write would exceed the storage quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// QuotaBackend rejects writes whose key and value together exceed a byte limit.
type QuotaBackend struct {
	Backend
	limit int
}

// WithQuota wraps backend with a per-item size limit. A limit <= 0 disables it.
func WithQuota(backend Backend, limit int) Backend {
	if limit <= 0 {
		return backend
	}
	return &QuotaBackend{Backend: backend, limit: limit}
}

func (q *QuotaBackend) SetItem(ctx context.Context, key, value string) error {
	if size := len(key) + len(value); size > q.limit {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrQuotaExceeded, size, q.limit)
	}
	return q.Backend.SetItem(ctx, key, value)
}
