package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"q.log/twophase/api"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const productMix = `{
	"objective_coefficients": [3, 2],
	"constraint_matrix": [[1, 1], [1, 3]],
	"rhs_values": [4, 6],
	"constraint_signs": ["<=", "<="],
	"maximize": true
}`

func TestSolveJSON(t *testing.T) {
	path := writeFile(t, "mix.json", productMix)

	out, err := execute(t, "solve", path, "--format", "json")
	require.NoError(t, err)

	var resp api.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "optimal", resp.Status)
	require.NotNil(t, resp.ObjectiveValue)
	assert.InDelta(t, 12, *resp.ObjectiveValue, 1e-9)
	assert.InDeltaSlice(t, []float64{4, 0}, resp.Variables, 1e-9)
}

func TestSolveTable(t *testing.T) {
	path := writeFile(t, "mix.yaml", `
objective_coefficients: [3, 2]
constraint_matrix: [[1, 1], [1, 3]]
rhs_values: [4, 6]
constraint_signs: ["<=", "<="]
`)

	out, err := execute(t, "solve", path, "--precision", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Phase 2, initial tableau, z = 0.00, x1 enters, s1 leaves")
	assert.Contains(t, out, "optimal: z = 12.00, x1 = 4.00, x2 = 0.00")
}

func TestSolveInvalidJSONReportsError(t *testing.T) {
	path := writeFile(t, "bad.json", `{"objective_coefficients": [1]}`)

	out, err := execute(t, "solve", path, "--format", "json")
	require.NoError(t, err)

	var resp api.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, api.StatusError, resp.Status)
	assert.Contains(t, resp.Message, "constraint_matrix")
}

func TestSolveFlagsReachSolver(t *testing.T) {
	// needs two pivots under Dantzig pricing
	path := writeFile(t, "wyndor.json", `{
		"objective_coefficients": [3, 5],
		"constraint_matrix": [[1, 0], [0, 2], [3, 2]],
		"rhs_values": [4, 12, 18],
		"constraint_signs": ["<=", "<=", "<="]
	}`)

	out, err := execute(t, "solve", path, "--format", "json", "--max-iterations", "1")
	require.NoError(t, err)

	var resp api.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, api.StatusDidNotConverge, resp.Status)
}

func TestSolveRejectsUnknownFormat(t *testing.T) {
	path := writeFile(t, "mix.json", productMix)

	_, err := execute(t, "solve", path, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestSolveConfigFile(t *testing.T) {
	path := writeFile(t, "mix.json", productMix)
	cfg := writeFile(t, "twophase.yaml", "solver:\n  pricing: simplex\n")

	_, err := execute(t, "solve", path, "--config", cfg)
	assert.ErrorContains(t, err, "config validation failed")
}

func TestBatch(t *testing.T) {
	good := writeFile(t, "mix.json", productMix)
	infeasible := writeFile(t, "infeasible.json", `{
		"objective_coefficients": [1, 1],
		"constraint_matrix": [[1, 1], [1, 1]],
		"rhs_values": [1, 3],
		"constraint_signs": ["<=", ">="]
	}`)
	unsupported := writeFile(t, "problem.txt", "")

	out, err := execute(t, "batch", good, infeasible, unsupported, "--precision", "1")
	assert.ErrorContains(t, err, "1 of 3 problems failed")
	assert.Contains(t, out, good+": optimal: z = 12.0, x1 = 4.0, x2 = 0.0")
	assert.Contains(t, out, infeasible+": infeasible: ")
	assert.Contains(t, out, unsupported+": error: ")
}
