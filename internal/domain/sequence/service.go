package sequence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Store increments and returns a per-key counter in a single atomic operation.
// The first call for a key returns 1.
type Store interface {
	Next(ctx context.Context, key string) (int64, error)
}

// Service allocates serial numbers and business identifiers.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new allocator.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, logger: logger}
}

// Allocate returns the next serial for key.
func (s *Service) Allocate(ctx context.Context, key string) (int64, error) {
	if strings.TrimSpace(key) == "" {
		return 0, ErrEmptyKey
	}
	serial, err := s.store.Next(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("allocating serial for %s: %w", key, err)
	}
	if serial < 1 {
		return 0, fmt.Errorf("allocating serial for %s: store returned %d", key, serial)
	}
	s.logger.Debug("serial allocated", "key", key, "serial", serial)
	return serial, nil
}

// AllocateJobIdentifier mints the next job identifier for mode, trade and year.
func (s *Service) AllocateJobIdentifier(ctx context.Context, mode, trade string, year int) (Identifier, error) {
	return s.allocateIdentifier(ctx, ScopeJob, mode, trade, year)
}

// AllocateQuoteIdentifier mints the next quote identifier for mode, trade and year.
func (s *Service) AllocateQuoteIdentifier(ctx context.Context, mode, trade string, year int) (Identifier, error) {
	return s.allocateIdentifier(ctx, ScopeQuote, mode, trade, year)
}

func (s *Service) allocateIdentifier(ctx context.Context, scope Scope, mode, trade string, year int) (Identifier, error) {
	key, err := BuildKey(scope, mode, trade, year)
	if err != nil {
		return Identifier{}, err
	}
	serial, err := s.Allocate(ctx, key.String())
	if err != nil {
		return Identifier{}, err
	}
	return Identifier{Key: key, Serial: serial}, nil
}
