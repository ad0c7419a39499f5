package platform_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/dom/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := platform.LoadEnv()
		require.NoError(t, err)
		assert.Equal(t, platform.EnvConfig{
			BatchSize:   500,
			LogLevel:    slog.LevelInfo,
			FixtureGlob: "**/*.yaml",
		}, cfg)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("DOM_BATCH_SIZE", "50")
		t.Setenv("DOM_LOG_LEVEL", "debug")
		t.Setenv("DOM_FIXTURE_DIR", "/srv/fixtures")

		cfg, err := platform.LoadEnv()
		require.NoError(t, err)
		assert.Equal(t, 50, cfg.BatchSize)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, "/srv/fixtures", cfg.FixtureDir)
	})

	t.Run("Invalid", func(t *testing.T) {
		t.Setenv("DOM_BATCH_SIZE", "many")
		_, err := platform.LoadEnv()
		assert.Error(t, err)
	})

	t.Run("Negative Batch Size", func(t *testing.T) {
		t.Setenv("DOM_BATCH_SIZE", "-1")
		_, err := platform.LoadEnv()
		assert.Error(t, err)
	})
}

func TestFromEnv(t *testing.T) {
	dir := t.TempDir()
	data := []byte("definitions:\n  - id: 4c5d6e7f-8091-4a2b-b3c4-d5e6f7081920\n    name: Booking\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "booking.yaml"), data, 0o644))
	t.Setenv("DOM_FIXTURE_DIR", dir)
	t.Setenv("DOM_LOG_LEVEL", "error")

	opts, err := platform.FromEnv()
	require.NoError(t, err)

	c, err := platform.New(opts...)
	require.NoError(t, err)
	def, err := c.Definitions().GetByID(context.Background(), bookingID)
	require.NoError(t, err)
	assert.Equal(t, "Booking", def.Name)
}
