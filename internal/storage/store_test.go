package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/integrators"
	"github.com/san-kum/phnet/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Method:   integrators.MethodCayley,
		StepSize: 0.1,
		Samples: []integrators.Sample{
			{Step: 0, T: 0, X: dynamo.State{1.0, 0.0}, Energy: 0.5},
			{Step: 1, T: 0.1, X: dynamo.State{0.995, -0.0998}, Energy: 0.5000001, Drift: 2e-7},
			{Step: 2, T: 0.2, X: dynamo.State{0.98, -0.19}, Energy: 0.51, Drift: 0.02},
		},
		StepsTaken: 2,
		FinalDrift: 0.02,
		MaxDrift:   0.02,
		Warnings:   1,
		Metrics: map[string]float64{
			"energy_drift": 0.02,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	info := RunInfo{Graph: "chain", Vertices: []string{"m", "k"}, Seed: 42}
	runID, err := st.Save(info, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}
	assert.Regexp(t, `^chain_[0-9a-f]{8}$`, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "chain", meta.Graph)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, "cayley", meta.Method)
	assert.Equal(t, 2, meta.Steps)
	assert.Equal(t, 0.02, meta.Metrics["energy_drift"])

	samples, err := st.LoadSamples(runID)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, testResult().Samples[1].X, samples[1].X)
	assert.Equal(t, 0.1, samples[1].T)
	assert.False(t, samples[1].Warning)
	assert.True(t, samples[2].Warning)
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, st.Init())
	first, err := st.Save(RunInfo{Graph: "a"}, testResult())
	require.NoError(t, err)
	second, err := st.Save(RunInfo{Graph: "b"}, testResult())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(st.baseDir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = st.LoadSamples("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreEmptySamples(t *testing.T) {
	st := New(t.TempDir())
	res := testResult()
	res.Samples = nil

	runID, err := st.Save(RunInfo{Graph: "empty"}, res)
	require.NoError(t, err)
	samples, err := st.LoadSamples(runID)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, RunInfo{Graph: "chain", Vertices: []string{"m", "k"}}, testResult()))

	var out struct {
		Graph   string `json:"graph"`
		Results []struct {
			Method  string `json:"method"`
			Samples []struct {
				X []float64 `json:"x"`
			} `json:"samples"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "chain", out.Graph)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "cayley", out.Results[0].Method)
	assert.Len(t, out.Results[0].Samples, 3)
}
