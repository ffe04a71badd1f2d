package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "twophase.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 1e-9, cfg.Solver.Tolerance)
	assert.Equal(t, 10000, cfg.Solver.MaxIterations)
	assert.Equal(t, "dantzig", cfg.Solver.Pricing)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, 4, cfg.Output.Precision)
	assert.Equal(t, "info", cfg.Log.Level)

	opts, err := cfg.SolverOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
solver:
  tolerance: 1.0e-7
  max_iterations: 50
  pricing: bland
output:
  precision: 2
`)

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 1e-7, cfg.Solver.Tolerance)
	assert.Equal(t, 50, cfg.Solver.MaxIterations)
	assert.Equal(t, "bland", cfg.Solver.Pricing)
	assert.Equal(t, 2, cfg.Output.Precision)
	assert.Equal(t, 4, cfg.Batch.Workers, "unset keys keep their default")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TWOPHASE_SOLVER_MAX_ITERATIONS", "25")
	t.Setenv("TWOPHASE_LOG_LEVEL", "debug")

	cfg, err := Load(New(), writeConfig(t, "solver:\n  max_iterations: 50\n"))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Solver.MaxIterations)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidation(t *testing.T) {
	for name, body := range map[string]string{
		"zero tolerance":  "solver:\n  tolerance: 0\n",
		"unknown pricing": "solver:\n  pricing: steepest\n",
		"no workers":      "batch:\n  workers: 0\n",
		"bad level":       "log:\n  level: loud\n",
		"precision":       "output:\n  precision: 20\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(New(), writeConfig(t, body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config error")
}
