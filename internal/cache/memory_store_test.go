package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetNX(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.SetNX(ctx, "k", []byte("1"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "k", []byte("2"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Second))
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = s.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))

	ok, err := s.SetNX(ctx, "k", []byte("again"), 0)
	require.NoError(t, err)
	assert.True(t, ok)
}
