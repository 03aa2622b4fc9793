package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kinky/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, models.DefaultParameters(), cfg.Defaults)
	assert.Equal(t, 200.0, cfg.Sensitivity.ExpFactor)
	assert.Equal(t, 5.0, cfg.Sensitivity.FineReduction)
	assert.Equal(t, WorkerModeLocal, cfg.Worker.Mode)
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kinky.yaml")
	data := []byte(`
defaults:
  k_enh: 2.5
sensitivity:
  exp_factor: 400
worker:
  mode: process
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.Defaults.KEnh)
	assert.Equal(t, 0.25, cfg.Defaults.SigmaEnh, "unset fields keep defaults")
	assert.Equal(t, 400.0, cfg.Sensitivity.ExpFactor)
	assert.Equal(t, 5.0, cfg.Sensitivity.PrecisionFactor)
	assert.Equal(t, WorkerModeProcess, cfg.Worker.Mode)
}

func TestLoadRejectsNegativeDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaults:\n  threshold: -1\n"), 0o644))

	_, err := Load(path)
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "threshold", verr.Field)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateSensitivityAndMode(t *testing.T) {
	cfg := Default()
	cfg.Sensitivity.ExpFactor = 0
	var verr *models.ValidationError
	require.True(t, errors.As(cfg.Validate(), &verr))
	assert.Equal(t, "sensitivity.exp_factor", verr.Field)

	cfg = Default()
	cfg.Worker.Mode = "thread"
	assert.Error(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KINKY_LOG_LEVEL":    "debug",
		"KINKY_WORKER_MODE":  "process",
		"KINKY_METRICS_ADDR": ":9100",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, WorkerModeProcess, cfg.Worker.Mode)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}
