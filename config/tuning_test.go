package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"repair-bot/internal/domain/analysis"
)

func TestOverlayTuning_ReplacesOnlyGivenFields(t *testing.T) {
	base := analysis.DefaultParams()
	data := []byte(`
merge_distance: 40
area:
  max_regions: 3
scoring:
  heuristic:
    repair_threshold: 55
external_timeout: 5s
`)

	p, err := OverlayTuning(base, data)
	require.NoError(t, err)
	require.Equal(t, 40.0, p.MergeDistance)
	require.Equal(t, 3, p.Area.MaxRegions)
	require.Equal(t, 0.5, p.Area.MinPercent)
	require.Equal(t, 55.0, p.Scoring.Heuristic.RepairThreshold)
	require.Equal(t, 35.0, p.Scoring.Heuristic.RustPoints)
	require.Equal(t, 5*time.Second, p.ExternalTimeout)
	require.NoError(t, ValidateTuning(p))
}

func TestOverlayTuning_BadYAML(t *testing.T) {
	_, err := OverlayTuning(analysis.DefaultParams(), []byte("area: [1, 2"))
	require.Error(t, err)
}

func TestValidateTuning(t *testing.T) {
	require.NoError(t, ValidateTuning(analysis.DefaultParams()))

	even := analysis.DefaultParams()
	even.Difference.BlurKernel = 8
	require.Error(t, ValidateTuning(even))

	inverted := analysis.DefaultParams()
	inverted.Area.MaxPercent = inverted.Area.MinPercent
	require.Error(t, ValidateTuning(inverted))

	fewMatches := analysis.DefaultParams()
	fewMatches.Alignment.MinMatches = 3
	require.Error(t, ValidateTuning(fewMatches))
}

func TestLoadTuning(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(file, []byte("difference:\n  diff_threshold: 30\n"), 0o600))

	p, err := LoadTuning(&Config{
		TuningPreset:   analysis.PresetHighPrecision,
		TuningFile:     file,
		RequestTimeout: 90 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, 30.0, p.Difference.DiffThreshold)
	require.Equal(t, 2000.0, p.Difference.MinContourArea)
	require.Equal(t, 90*time.Second, p.RequestTimeout)
	require.Equal(t, 15*time.Second, p.ExternalTimeout)

	_, err = LoadTuning(&Config{TuningPreset: "aggressive"})
	require.Error(t, err)

	_, err = LoadTuning(&Config{TuningFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}
