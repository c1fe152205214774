package stacking

import (
	"errors"
	"testing"
)

type fakeRunStore struct {
	inserted  []AnalysisRun
	completed []struct {
		runID       string
		status      string
		targetAtoms int
	}
	insertErr error
}

func (f *fakeRunStore) InsertRun(run *AnalysisRun) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *run)
	return nil
}

func (f *fakeRunStore) CompleteRun(runID, status string, durationSecs float64, targetAtoms int, stats Statistics) error {
	f.completed = append(f.completed, struct {
		runID       string
		status      string
		targetAtoms int
	}{runID, status, targetAtoms})
	return nil
}

func TestRunManager_StartAndComplete(t *testing.T) {
	store := &fakeRunStore{}
	m := NewRunManager(store)

	id, err := m.StartRun("frame.dump", DefaultConfig())
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if id == "" {
		t.Fatal("StartRun returned empty run ID")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted runs = %d, want 1", len(store.inserted))
	}
	run := store.inserted[0]
	if run.Status != "running" {
		t.Errorf("Status = %q, want running", run.Status)
	}
	if run.SourcePath != "frame.dump" {
		t.Errorf("SourcePath = %q, want frame.dump", run.SourcePath)
	}
	if run.ParamsJSON == "" {
		t.Error("ParamsJSON is empty, want serialized configuration")
	}

	labels := []StackingLabel{{AtomID: 1, Type: StackingAA, Code: 5}}
	result := &ClassificationResult{Labels: labels, Stats: ComputeStatistics(labels)}
	if err := m.CompleteRun(result); err != nil {
		t.Fatalf("CompleteRun: %v", err)
	}
	if len(store.completed) != 1 {
		t.Fatalf("completed runs = %d, want 1", len(store.completed))
	}
	c := store.completed[0]
	if c.runID != id || c.status != "complete" || c.targetAtoms != 1 {
		t.Errorf("completion = %+v, want run %s complete with 1 atom", c, id)
	}
}

func TestRunManager_FailRun(t *testing.T) {
	store := &fakeRunStore{}
	m := NewRunManager(store)

	id, err := m.StartRun("frame.dump", DefaultConfig())
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := m.FailRun(errors.New("voxel worker crashed")); err != nil {
		t.Fatalf("FailRun: %v", err)
	}
	if len(store.completed) != 1 {
		t.Fatalf("completed runs = %d, want 1", len(store.completed))
	}
	if c := store.completed[0]; c.runID != id || c.status != "failed" {
		t.Errorf("completion = %+v, want run %s failed", c, id)
	}
}

func TestRunManager_FinaliseWithoutRunIsNoop(t *testing.T) {
	store := &fakeRunStore{}
	m := NewRunManager(store)

	if err := m.CompleteRun(&ClassificationResult{}); err != nil {
		t.Errorf("CompleteRun with no open run = %v, want nil", err)
	}
	if err := m.FailRun(errors.New("boom")); err != nil {
		t.Errorf("FailRun with no open run = %v, want nil", err)
	}
	if len(store.completed) != 0 {
		t.Errorf("completed runs = %d, want 0", len(store.completed))
	}
}

func TestRunManager_InsertErrorPropagates(t *testing.T) {
	wantErr := errors.New("disk full")
	m := NewRunManager(&fakeRunStore{insertErr: wantErr})

	if _, err := m.StartRun("frame.dump", DefaultConfig()); !errors.Is(err, wantErr) {
		t.Errorf("StartRun err = %v, want %v", err, wantErr)
	}
}
