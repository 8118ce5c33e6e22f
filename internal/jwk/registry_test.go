package jwk

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubKey struct {
	id  string
	tag string
}

func (k *stubKey) ID() string                    { return k.id }
func (k *stubKey) SupportsAlgorithm(string) bool { return true }
func (k *stubKey) Export() (string, error)       { return k.tag, nil }

func TestRegistry_Create(t *testing.T) {
	t.Parallel()

	t.Run("unregistered type yields no key and no error", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		key, ok, err := r.Create(&Record{Kty: "RSA"})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, key)
	})

	t.Run("default registry knows RSA only", func(t *testing.T) {
		t.Parallel()

		r := NewDefaultRegistry()
		assert.Equal(t, []string{KeyTypeRSA}, r.Types())

		key, ok, err := r.Create(&Record{Kty: "RSA", Kid: "a"})
		require.NoError(t, err)
		require.True(t, ok)
		assert.IsType(t, &RSAKey{}, key)
		assert.Equal(t, "a", key.ID())

		key, ok, err = r.Create(&Record{Kty: "EC", Kid: "b"})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, key)
	})

	t.Run("tags are case-sensitive", func(t *testing.T) {
		t.Parallel()

		r := NewDefaultRegistry()
		_, ok, err := r.Create(&Record{Kty: "rsa"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("factory error is returned", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		r := NewRegistry()
		r.Register("X", func(*Record) (Key, error) { return nil, wantErr })

		key, ok, err := r.Create(&Record{Kty: "X"})
		assert.ErrorIs(t, err, wantErr)
		assert.False(t, ok)
		assert.Nil(t, key)
	})

	t.Run("factory returning nil key is treated as no key", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.Register("X", func(*Record) (Key, error) { return nil, nil })

		key, ok, err := r.Create(&Record{Kty: "X"})
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, key)
	})
}

func TestRegistry_Register_LastWins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("X", func(rec *Record) (Key, error) { return &stubKey{id: rec.Kid, tag: "first"}, nil })
	r.Register("X", func(rec *Record) (Key, error) { return &stubKey{id: rec.Kid, tag: "second"}, nil })

	key, ok, err := r.Create(&Record{Kty: "X", Kid: "k"})
	require.NoError(t, err)
	require.True(t, ok)

	exported, err := key.Export()
	require.NoError(t, err)
	assert.Equal(t, "second", exported)
	assert.Equal(t, []string{"X"}, r.Types())
}

func TestRegistry_Types(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Empty(t, r.Types())

	RegisterRSA(r)
	RegisterEC(r)
	assert.Equal(t, []string{KeyTypeEC, KeyTypeRSA}, r.Types())
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	t.Parallel()

	r := NewDefaultRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, ok, err := r.Create(&Record{Kty: KeyTypeRSA, Kid: "k"})
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "k", key.ID())
		}()
	}
	wg.Wait()
}
