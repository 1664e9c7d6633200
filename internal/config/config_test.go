package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_URL", "")
	t.Setenv("APP_NAME", "")
	t.Setenv("BOOKSTORE_CATALOG_SERVICE_HOST", "")
	t.Setenv("BOOKSTORE_CATALOG_SERVICE_PORT", "")
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "file:cart.db")
	t.Setenv("APP_NAME", "bookstore-cart")

	cfg, err := Load("no-such-file.env")
	require.NoError(t, err)

	assert.Equal(t, "file:cart.db", cfg.DBURL)
	assert.Equal(t, "bookstore-cart", cfg.AppName)
	assert.Equal(t, "http://localhost:8000", cfg.CatalogURL())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "DB_URL=file:fromfile.db\nAPP_NAME=cart-from-file\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file:fromfile.db", cfg.DBURL)
	assert.Equal(t, "cart-from-file", cfg.AppName)
}

func TestEnvTakesPrecedenceOverFile(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "DB_URL=file:fromfile.db\nAPP_NAME=cart-from-file\n")
	t.Setenv("DB_URL", "file:fromenv.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file:fromenv.db", cfg.DBURL)
	assert.Equal(t, "cart-from-file", cfg.AppName)
}

func TestLoadMissingRequiredFields(t *testing.T) {
	clearEnv(t)

	_, err := Load("no-such-file.env")
	require.ErrorIs(t, err, ErrNoDBURL)

	t.Setenv("DB_URL", "file:cart.db")
	_, err = Load("no-such-file.env")
	require.ErrorIs(t, err, ErrNoAppName)
}

func TestReloadKeepsCatalogAddressWhenUnset(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "file:cart.db")
	t.Setenv("APP_NAME", "bookstore-cart")
	t.Setenv("BOOKSTORE_CATALOG_SERVICE_HOST", "catalog.internal")
	t.Setenv("BOOKSTORE_CATALOG_SERVICE_PORT", "9000")

	cfg, err := Load("no-such-file.env")
	require.NoError(t, err)
	require.Equal(t, "http://catalog.internal:9000", cfg.CatalogURL())

	provider := NewProvider(cfg)
	r := NewReloader(provider, "no-such-file.env", time.Hour, func(error) {})

	// Only one of the two optional fields resolves: both previous values stay.
	t.Setenv("BOOKSTORE_CATALOG_SERVICE_HOST", "")
	t.Setenv("BOOKSTORE_CATALOG_SERVICE_PORT", "9999")
	require.NoError(t, r.Reload())

	assert.Equal(t, "http://catalog.internal:9000", provider.Current().CatalogURL())
}

func TestReloadUpdatesSnapshot(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "file:cart.db")
	t.Setenv("APP_NAME", "bookstore-cart")

	cfg, err := Load("no-such-file.env")
	require.NoError(t, err)
	provider := NewProvider(cfg)
	r := NewReloader(provider, "no-such-file.env", time.Hour, func(error) {})

	t.Setenv("APP_NAME", "bookstore-cart-v2")
	require.NoError(t, r.Reload())
	assert.Equal(t, "bookstore-cart-v2", provider.Current().AppName)
}

func TestReloadFailureLeavesSnapshotIntact(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "file:cart.db")
	t.Setenv("APP_NAME", "bookstore-cart")

	cfg, err := Load("no-such-file.env")
	require.NoError(t, err)
	provider := NewProvider(cfg)
	r := NewReloader(provider, "no-such-file.env", time.Hour, func(error) {})

	t.Setenv("DB_URL", "")
	require.ErrorIs(t, r.Reload(), ErrNoDBURL)

	// A previously valid snapshot never regresses.
	assert.Equal(t, "file:cart.db", provider.Current().DBURL)
}

func TestReloaderReportsErrorAndStops(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "file:cart.db")
	t.Setenv("APP_NAME", "bookstore-cart")

	cfg, err := Load("no-such-file.env")
	require.NoError(t, err)
	provider := NewProvider(cfg)

	t.Setenv("DB_URL", "")
	errCh := make(chan error, 1)
	r := NewReloader(provider, "no-such-file.env", 5*time.Millisecond, func(err error) {
		errCh <- err
	})
	r.Start()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrNoDBURL)
	case <-time.After(2 * time.Second):
		t.Fatal("reloader did not report the failed reload")
	}
	r.Stop()
}
