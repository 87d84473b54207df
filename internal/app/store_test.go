package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingredient-scanner/internal/config"
	"ingredient-scanner/internal/wordlist"
)

func TestOpenStoreDrivers(t *testing.T) {
	ctx := context.Background()

	s, c, err := OpenStore(ctx, config.StoreConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &wordlist.MemoryStore{}, s)
	assert.NoError(t, c.Close())

	path := filepath.Join(t.TempDir(), "lists.json")
	s, _, err = OpenStore(ctx, config.StoreConfig{Driver: config.DriverFile, Path: path})
	require.NoError(t, err)
	require.IsType(t, &wordlist.FileStore{}, s)
	assert.Equal(t, path, s.(*wordlist.FileStore).Path())

	_, _, err = OpenStore(ctx, config.StoreConfig{Driver: "etcd"})
	assert.Error(t, err)
}

func TestNewRuntimeSeedsLists(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.DriverMemory

	rt, err := NewRuntime(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, wordlist.Defaults(wordlist.Prohibited), rt.Lists.Get(wordlist.Prohibited))
	raw, ok := rt.Store.(*wordlist.MemoryStore).Raw(wordlist.ProhibitedKey)
	assert.True(t, ok)
	assert.Contains(t, raw, "gelatin")

	s := rt.NewSession()
	assert.Same(t, rt.Lists, s.Lists())
	assert.NoError(t, rt.WatchLists(context.Background()))
}
