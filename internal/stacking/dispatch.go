package stacking

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// VoxelResult carries the labels produced for one voxel's core target atoms.
type VoxelResult struct {
	Index  VoxelIndex
	Labels []StackingLabel
}

// Dispatcher executes the classifier over voxel work units with a
// fixed-size worker pool. Work units are fully independent: each task reads
// the shared store and writes only its own result slot, so no cross-voxel
// synchronisation happens during classification.
type Dispatcher struct {
	cfg        Config
	classifier *Classifier
}

// NewDispatcher builds a dispatcher for a validated configuration.
func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{cfg: cfg, classifier: NewClassifier(cfg)}
}

// Run classifies every target-species core atom of every voxel and returns
// the unordered per-voxel results. Scheduling order is unconstrained and
// correctness never depends on it. The first failing voxel cancels the
// remaining work; in-flight tasks drain, partial results are discarded and
// the failure is reported as a WorkerFailure naming the voxel.
func (d *Dispatcher) Run(ctx context.Context, store *CoordinateStore, grid *VoxelGrid) ([]VoxelResult, error) {
	results := make([]VoxelResult, len(grid.Voxels))

	workers := d.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for vi := range grid.Voxels {
		vi := vi
		g.Go(func() (err error) {
			vox := &grid.Voxels[vi]
			defer func() {
				if r := recover(); r != nil {
					err = &WorkerFailure{Voxel: vox.Index, Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			results[vi] = d.processVoxel(store, vox)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// processVoxel materialises the voxel's bounded halo slice, indexes it, and
// classifies the voxel's own target atoms against it. This per-task slice is
// the only per-voxel memory; it is bounded by the halo volume, not by the
// total system size.
func (d *Dispatcher) processVoxel(store *CoordinateStore, vox *Voxel) VoxelResult {
	res := VoxelResult{Index: vox.Index}

	candidates := make([]Atom, len(vox.Halo))
	for i, ai := range vox.Halo {
		candidates[i] = store.AtomAt(ai)
	}
	idx := NewNeighborIndex(candidates, d.cfg.SearchRadius)

	for _, ai := range vox.Core {
		a := store.AtomAt(ai)
		if a.Species != d.cfg.TargetSpecies {
			continue
		}
		res.Labels = append(res.Labels, d.classifier.Classify(a, idx))
	}
	return res
}
