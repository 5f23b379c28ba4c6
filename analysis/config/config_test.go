package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/functional"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/tonal"
	"github.com/pawelknorps/chord-lab-sub001/live"
	"github.com/pawelknorps/chord-lab-sub001/logging"
)

func TestDefaultConfigMatchesPackageDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, tonal.DefaultSegmentationParams(), cfg.Segmentation.Params())
	assert.Equal(t, functional.DefaultParams(), cfg.Labeling.Params())
	assert.Equal(t, live.DefaultParams(), cfg.Live.Params())
	assert.Equal(t, logging.InfoLevel, cfg.Level())
	assert.Equal(t, cfg, cfg.Sanitize())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CHARTLAB_LIVE_MIN_SAMPLES", "12")
	t.Setenv("CHARTLAB_LIVE_POLL_INTERVAL", "300ms")
	t.Setenv("CHARTLAB_SEGMENTATION_DETECT_SENTINELS", "false")
	t.Setenv("CHARTLAB_SEGMENTATION_RELATIVE_BONUS", "0.25")
	t.Setenv("CHARTLAB_LABELING_DETECT_COLTRANE", "false")
	t.Setenv("CHARTLAB_LOG_LEVEL", "debug")

	cfg, err := FromEnv("chartlab")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Live.MinSamples)
	assert.Equal(t, 300*time.Millisecond, cfg.Live.PollInterval)
	assert.False(t, cfg.Segmentation.DetectSentinels)
	assert.Equal(t, 0.25, cfg.Segmentation.RelativeBonus)
	assert.False(t, cfg.Labeling.DetectColtrane)
	assert.True(t, cfg.Labeling.DetectSecondaryDominants)
	assert.Equal(t, logging.DebugLevel, cfg.Level())

	// untouched values keep their defaults
	assert.Equal(t, 5.0, cfg.Segmentation.Chromatic)
	assert.Equal(t, 250.0, cfg.Live.BassCutoffHz)
}

func TestFromEnvInvalid(t *testing.T) {
	t.Setenv("CHARTLAB_LIVE_MIN_SAMPLES", "lots")
	_, err := FromEnv("")
	assert.Error(t, err)
}

func TestFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chartlab.yaml")
	content := `
segmentation:
  chromatic: 8
  min_run: 4
live:
  pedal_share: 0.6
  poll_interval: 50ms
log_level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := FromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 8.0, cfg.Segmentation.Chromatic)
	assert.Equal(t, 4, cfg.Segmentation.MinRun)
	assert.Equal(t, 2.0, cfg.Segmentation.Secondary)
	assert.Equal(t, 0.6, cfg.Live.PedalShare)
	assert.Equal(t, 50*time.Millisecond, cfg.Live.PollInterval)
	assert.Equal(t, 8, cfg.Live.MinSamples)
	assert.Equal(t, logging.WarnLevel, cfg.Level())
}

func TestFromYAMLErrors(t *testing.T) {
	_, err := FromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("live: [unclosed"), 0o644))
	_, err = FromYAML(path)
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chartlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("live:\n  min_samples: 10\n  buffer_size: 90\n"), 0o644))
	t.Setenv("CHARTLAB_LIVE_MIN_SAMPLES", "16")

	cfg, err := Load(path, "chartlab")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Live.MinSamples)
	assert.Equal(t, 90, cfg.Live.BufferSize)

	cfg, err = Load("", "chartlab")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Live.MinSamples)
	assert.Equal(t, 60, cfg.Live.BufferSize)
}

func TestSanitize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmentation.Base = 0
	cfg.Segmentation.Secondary = -1
	cfg.Segmentation.MinRun = 0
	cfg.Live.MinSamples = 0
	cfg.Live.SubstituteShare = 2
	cfg.Live.PedalShare = -0.5
	cfg.Live.PollInterval = 0
	cfg.Live.ReferencePitch = -440
	cfg.LogLevel = "chatty"

	assert.Equal(t, DefaultConfig(), cfg.Sanitize())

	cfg = DefaultConfig()
	cfg.Live.MinSamples = 100
	sanitized := cfg.Sanitize()
	assert.Equal(t, 100, sanitized.Live.BufferSize)
}
