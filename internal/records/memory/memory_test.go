package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/records"
)

func TestStoreGetPut(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	in := []byte(`[1,2]`)
	require.NoError(t, s.Put(ctx, "k", in))
	in[0] = 'x'

	got, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `[1,2]`, string(got), "stored value must not alias the caller's slice")
	assert.Equal(t, []string{"k"}, s.Keys())
}

func TestStoreFailHook(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")
	s := NewWith(map[string][]byte{"a": []byte("1"), "b": []byte("2")})
	s.Fail = func(op, key string) error {
		if op == "get" && key == "a" {
			return boom
		}
		return nil
	}

	_, _, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, boom)

	v, found, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2", string(v))
}

func TestStoreClosed(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Put(context.Background(), "k", nil), records.ErrClosed)
}

func TestPutAllFallsBackToPut(t *testing.T) {
	s := New()
	err := records.PutAll(context.Background(), s, map[string][]byte{"x": []byte("1"), "y": []byte("2")})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, s.Keys())
}
