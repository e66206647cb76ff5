package sequence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/freightline/internal/apperr"
	"github.com/rpggio/freightline/internal/domain/sequence"
	"github.com/rpggio/freightline/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey_Normalizes(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		trade string
		year  int
		want  string
	}{
		{name: "canonical", mode: "SEA", trade: "EX", year: 25, want: "job:SEA:EX:25"},
		{name: "aliases", mode: "ocean", trade: "export", year: 2025, want: "job:SEA:EX:25"},
		{name: "padded year", mode: "air-freight", trade: "Import", year: 2007, want: "job:AIR:IM:07"},
		{name: "cross trade", mode: " truck ", trade: "cross_trade", year: 31, want: "job:ROAD:CT:31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := sequence.BuildKey(sequence.ScopeJob, tt.mode, tt.trade, tt.year)
			require.NoError(t, err)
			assert.Equal(t, tt.want, key.String())
		})
	}
}

func TestBuildKey_RejectsUnknownParts(t *testing.T) {
	_, err := sequence.BuildKey(sequence.ScopeJob, "SUBMARINE", "EX", 25)
	require.ErrorIs(t, err, sequence.ErrUnknownMode)

	_, err = sequence.BuildKey(sequence.ScopeJob, "SEA", "SIDEWAYS", 25)
	require.ErrorIs(t, err, sequence.ErrUnknownTrade)

	_, err = sequence.BuildKey(sequence.ScopeJob, "SEA", "EX", 1999)
	require.ErrorIs(t, err, sequence.ErrInvalidYear)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestIdentifier_StringAndParse(t *testing.T) {
	job := sequence.Identifier{
		Key:    sequence.Key{Scope: sequence.ScopeJob, Mode: sequence.ModeSea, Trade: sequence.TradeExport, Year: "25"},
		Serial: 1,
	}
	assert.Equal(t, "SEA-EX-25-00001", job.String())

	quote := sequence.Identifier{
		Key:    sequence.Key{Scope: sequence.ScopeQuote, Mode: sequence.ModeAir, Trade: sequence.TradeImport, Year: "25"},
		Serial: 42,
	}
	assert.Equal(t, "Q-AIR-IM-25-00042", quote.String())

	parsed, err := sequence.ParseIdentifier("Q-AIR-IM-25-00042")
	require.NoError(t, err)
	assert.Equal(t, quote, parsed)

	parsed, err = sequence.ParseIdentifier("SEA-EX-25-123456")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), parsed.Serial)

	for _, bad := range []string{"", "SEA-EX-25", "SEA-EX-2025-00001", "SEA-EX-25-0001", "SEA-EX-25-00000"} {
		_, err := sequence.ParseIdentifier(bad)
		assert.ErrorIs(t, err, apperr.ErrValidation, bad)
	}
}

func TestService_AllocateJobIdentifier(t *testing.T) {
	ctx := context.Background()
	store := &mocks.CounterStore{}
	store.On("Next", ctx, "job:SEA:EX:25").Return(int64(1), nil).Once()
	store.On("Next", ctx, "job:SEA:EX:25").Return(int64(2), nil).Once()

	svc := sequence.NewService(store, nil)

	first, err := svc.AllocateJobIdentifier(ctx, "sea", "ex", 2025)
	require.NoError(t, err)
	assert.Equal(t, "SEA-EX-25-00001", first.String())

	second, err := svc.AllocateJobIdentifier(ctx, "SEA", "EX", 25)
	require.NoError(t, err)
	assert.Equal(t, "SEA-EX-25-00002", second.String())

	store.AssertExpectations(t)
}

func TestService_QuoteSeriesIsSeparate(t *testing.T) {
	ctx := context.Background()
	store := &mocks.CounterStore{}
	store.On("Next", ctx, "quote:AIR:IM:25").Return(int64(7), nil)

	svc := sequence.NewService(store, nil)
	id, err := svc.AllocateQuoteIdentifier(ctx, "AIR", "IM", 25)
	require.NoError(t, err)
	assert.Equal(t, "Q-AIR-IM-25-00007", id.String())
	store.AssertNotCalled(t, "Next", ctx, "job:AIR:IM:25")
}

func TestService_Allocate(t *testing.T) {
	ctx := context.Background()

	t.Run("empty key", func(t *testing.T) {
		svc := sequence.NewService(&mocks.CounterStore{}, nil)
		_, err := svc.Allocate(ctx, "  ")
		require.ErrorIs(t, err, sequence.ErrEmptyKey)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &mocks.CounterStore{}
		store.On("Next", ctx, "k").Return(int64(0), errors.New("disk full"))
		svc := sequence.NewService(store, nil)
		_, err := svc.Allocate(ctx, "k")
		require.ErrorContains(t, err, "disk full")
	})

	t.Run("invalid serial", func(t *testing.T) {
		store := &mocks.CounterStore{}
		store.On("Next", ctx, "k").Return(int64(0), nil)
		svc := sequence.NewService(store, nil)
		_, err := svc.Allocate(ctx, "k")
		require.Error(t, err)
	})

	t.Run("invalid mode never touches the store", func(t *testing.T) {
		store := &mocks.CounterStore{}
		svc := sequence.NewService(store, nil)
		_, err := svc.AllocateJobIdentifier(ctx, "", "EX", 25)
		require.ErrorIs(t, err, sequence.ErrUnknownMode)
		assert.Empty(t, store.Calls)
	})
}
