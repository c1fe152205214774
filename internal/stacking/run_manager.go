package stacking

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AnalysisRun records one classification run over a structure snapshot.
type AnalysisRun struct {
	RunID        string
	CreatedAt    time.Time
	SourcePath   string
	ParamsJSON   string
	Status       string // "running", "complete", "failed"
	TargetAtoms  int
	DurationSecs float64
}

// RunStore persists analysis runs and their statistics.
type RunStore interface {
	InsertRun(run *AnalysisRun) error
	CompleteRun(runID, status string, durationSecs float64, targetAtoms int, stats Statistics) error
}

// RunManager coordinates analysis run lifecycle: it opens a run before a
// snapshot is processed, then finalises it with statistics or a failure.
// Safe for concurrent use.
type RunManager struct {
	mu      sync.Mutex
	store   RunStore
	current *AnalysisRun
	started time.Time
}

// NewRunManager creates a manager backed by the given store.
func NewRunManager(store RunStore) *RunManager {
	return &RunManager{store: store}
}

// StartRun opens a new run for the given source file and configuration and
// returns the run ID.
func (m *RunManager) StartRun(sourcePath string, cfg Config) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	params, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	run := &AnalysisRun{
		RunID:      uuid.New().String(),
		CreatedAt:  time.Now(),
		SourcePath: sourcePath,
		ParamsJSON: string(params),
		Status:     "running",
	}
	if err := m.store.InsertRun(run); err != nil {
		return "", err
	}

	m.current = run
	m.started = time.Now()
	log.Printf("[RunManager] started run %s for %s", run.RunID, sourcePath)
	return run.RunID, nil
}

// CompleteRun finalises the current run with the merged result.
func (m *RunManager) CompleteRun(result *ClassificationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	elapsed := time.Since(m.started).Seconds()
	err := m.store.CompleteRun(m.current.RunID, "complete", elapsed, result.Stats.Total, result.Stats)
	if err != nil {
		return err
	}
	log.Printf("[RunManager] completed run %s: %d atoms in %.2fs", m.current.RunID, result.Stats.Total, elapsed)
	m.current = nil
	return nil
}

// FailRun marks the current run failed. The cause is logged, not persisted;
// the caller still owns error propagation.
func (m *RunManager) FailRun(cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	elapsed := time.Since(m.started).Seconds()
	err := m.store.CompleteRun(m.current.RunID, "failed", elapsed, 0, Statistics{})
	if err != nil {
		return err
	}
	log.Printf("[RunManager] run %s failed after %.2fs: %v", m.current.RunID, elapsed, cause)
	m.current = nil
	return nil
}
