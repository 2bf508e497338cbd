package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/phnet/internal/dynamo"
	"github.com/san-kum/phnet/internal/integrators"
	"github.com/san-kum/phnet/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes what was simulated; the store adds id and timestamp.
type RunInfo struct {
	Graph    string   `json:"graph"`
	Vertices []string `json:"vertices"`
	Sparse   bool     `json:"sparse"`
	Seed     int64    `json:"seed"`
}

type RunMetadata struct {
	RunInfo
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Method     string             `json:"method"`
	StepSize   float64            `json:"step_size"`
	Steps      int                `json:"steps"`
	FinalDrift float64            `json:"final_drift"`
	MaxDrift   float64            `json:"max_drift"`
	Warnings   int                `json:"warnings"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and states.csv under a fresh run directory and
// returns the run id.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", info.Graph, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		RunInfo:    info,
		ID:         runID,
		Timestamp:  time.Now().UTC(),
		Method:     string(result.Method),
		StepSize:   result.StepSize,
		Steps:      result.StepsTaken,
		FinalDrift: result.FinalDrift,
		MaxDrift:   result.MaxDrift,
		Warnings:   result.Warnings,
		Metrics:    result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), result.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, samples []integrators.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(samples) > 0 {
		header := []string{"step", "t"}
		for i := range samples[0].X {
			header = append(header, fmt.Sprintf("x%d", i))
		}
		header = append(header, "energy", "drift")
		if err := w.Write(header); err != nil {
			return err
		}

		for _, smp := range samples {
			row := []string{strconv.Itoa(smp.Step), formatFloat(smp.T)}
			for _, val := range smp.X {
				row = append(row, formatFloat(val))
			}
			row = append(row, formatFloat(smp.Energy), formatFloat(smp.Drift))
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns saved runs, newest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads states.csv back. Warning is recomputed from drift.
func (s *Store) LoadSamples(runID string) ([]integrators.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []integrators.Sample{}, nil
	}

	dim := len(records[0]) - 4
	samples := make([]integrators.Sample, 0, len(records)-1)
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: states.csv line %d: %w", line+2, err)
			}
			vals[j] = v
		}
		smp := integrators.Sample{
			Step:   int(vals[0]),
			T:      vals[1],
			X:      dynamo.State(vals[2 : 2+dim]),
			Energy: vals[2+dim],
			Drift:  vals[3+dim],
		}
		smp.Warning = smp.Drift > integrators.DriftWarningThreshold
		samples = append(samples, smp)
	}
	return samples, nil
}
