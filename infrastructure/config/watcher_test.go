package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverridesApply(t *testing.T) {
	cfg := &Config{
		CacheListTTL:  30 * time.Second,
		CacheCountTTL: 120 * time.Second,
		LogLevel:      "info",
		EnableMetrics: true,
	}

	disabled := false
	Overrides{
		CacheListTTL:  Duration(5 * time.Second),
		LogLevel:      "debug",
		EnableMetrics: &disabled,
	}.Apply(cfg)

	assert.Equal(t, 5*time.Second, cfg.CacheListTTL)
	assert.Equal(t, 120*time.Second, cfg.CacheCountTTL, "unset overrides leave the field alone")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.EnableMetrics)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.Zero(t, w.Current().CacheListTTL, "missing file means empty overrides")

	require.NoError(t, os.WriteFile(path, []byte("cache_list_ttl: 45s\nlog_level: debug\n"), 0o644))
	assert.Eventually(t, func() bool {
		return w.Current().CacheListTTL == Duration(45*time.Second)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "debug", w.Current().LogLevel)
}

func TestWatcherKeepsPreviousOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	defer w.Close()
	require.Equal(t, "warn", w.Current().LogLevel)

	require.NoError(t, os.WriteFile(path, []byte(": not yaml ["), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "warn", w.Current().LogLevel, "a broken file must not wipe the loaded overrides")
}
