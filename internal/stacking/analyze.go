package stacking

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Analyzer wires the partitioner, dispatcher and merger into one run over a
// loaded structure. Construct it once per configuration; the configuration
// is validated at construction and passed by value into the pipeline.
type Analyzer struct {
	cfg        Config
	dispatcher *Dispatcher
}

// NewAnalyzer validates the configuration and builds the pipeline.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg, dispatcher: NewDispatcher(cfg)}, nil
}

// Config returns the validated configuration the analyzer runs with.
func (a *Analyzer) Config() Config { return a.cfg }

// Analyze classifies every target-species atom in the store and returns the
// merged, ID-ordered result. A failure in any voxel aborts the whole run;
// partial results are never reported as complete.
func (a *Analyzer) Analyze(ctx context.Context, store *CoordinateStore) (*ClassificationResult, error) {
	if store.CountSpecies(a.cfg.TargetSpecies) == 0 {
		return nil, &ConfigurationError{
			Field:  "TargetSpecies",
			Reason: fmt.Sprintf("no atoms of species %d in the structure", a.cfg.TargetSpecies),
		}
	}

	start := time.Now()
	grid, err := Partition(store, a.cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[Analyzer] partitioned %d atoms into %dx%dx%d voxels (edge %.1f, halo %.1f)",
		store.Len(), grid.NX, grid.NY, grid.NZ, grid.VoxelSize, grid.HaloMargin)

	results, err := a.dispatcher.Run(ctx, store, grid)
	if err != nil {
		return nil, err
	}

	merged, err := Merge(store, a.cfg, results)
	if err != nil {
		return nil, err
	}
	log.Printf("[Analyzer] classified %d atoms in %.2fs", merged.Stats.Total, time.Since(start).Seconds())
	return merged, nil
}
