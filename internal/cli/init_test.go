package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/persist"
	"ledger/internal/store"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEDGER_TEST_VALUE=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LEDGER_TEST_VALUE") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-dotenv", os.Getenv("LEDGER_TEST_VALUE"))

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestOpenPersistsAcrossRuntimes(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		DataBackend:  "file",
		DataDir:      t.TempDir(),
		WriteTimeout: time.Second,
	}
	logger := SetupLogger(&config.Config{LogLevel: "error", LogFormat: "text"}, &bytes.Buffer{})

	rt, err := Open(ctx, cfg, logger)
	require.NoError(t, err)
	require.NoError(t, rt.Session.Report().Err())

	rt.Session.Store().Dispatch(store.AddCategory{Name: "Pets"})
	require.NoError(t, rt.Close())

	rt, err = Open(ctx, cfg, logger)
	require.NoError(t, err)
	defer rt.Close()

	state := rt.Session.Store().State()
	assert.True(t, state.HasCategory("Pets"))
	assert.Equal(t, core.DefaultCategories(), state.Categories[:len(core.DefaultCategories())])

	cats := rt.Session.Report().Categories
	assert.Equal(t, persist.KeyCategories, cats.Key)
	assert.True(t, cats.Loaded())
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DataBackend: "nope"}, nil)
	assert.Error(t, err)
}
