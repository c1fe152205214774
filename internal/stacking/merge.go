package stacking

import "sort"

// Merge reconciles the per-voxel results into one ClassificationResult with
// exactly one label per target atom, ordered by ascending atom ID. Merging
// runs single-threaded after the dispatch barrier: by the time it starts,
// every voxel has reported.
//
// Duplicate ownership of an atom, or a target atom no voxel claimed, is a
// tiling-integrity bug and fails loudly with a PartitionIntegrityError
// naming the atom and voxel(s) — never silently dropped or overwritten.
func Merge(store *CoordinateStore, cfg Config, results []VoxelResult) (*ClassificationResult, error) {
	targetCount := store.CountSpecies(cfg.TargetSpecies)

	claimedBy := make(map[int64]VoxelIndex, targetCount)
	labels := make([]StackingLabel, 0, targetCount)
	for _, vr := range results {
		for _, l := range vr.Labels {
			if prev, dup := claimedBy[l.AtomID]; dup {
				return nil, &PartitionIntegrityError{
					AtomID: l.AtomID,
					Voxels: []VoxelIndex{prev, vr.Index},
					Reason: "owned by more than one voxel",
				}
			}
			claimedBy[l.AtomID] = vr.Index
			labels = append(labels, l)
		}
	}

	for _, a := range store.Atoms() {
		if a.Species != cfg.TargetSpecies {
			continue
		}
		if _, ok := claimedBy[a.ID]; !ok {
			return nil, &PartitionIntegrityError{AtomID: a.ID, Reason: "no voxel claimed ownership"}
		}
	}
	if len(labels) != targetCount {
		// Every target is claimed and there are no duplicates, so a count
		// mismatch means a voxel labelled a non-target atom.
		for _, l := range labels {
			if !isTargetAtom(store, cfg, l.AtomID) {
				return nil, &PartitionIntegrityError{
					AtomID: l.AtomID,
					Voxels: []VoxelIndex{claimedBy[l.AtomID]},
					Reason: "labelled atom is not a target-species atom",
				}
			}
		}
	}

	sort.Slice(labels, func(i, j int) bool { return labels[i].AtomID < labels[j].AtomID })

	return &ClassificationResult{
		Labels: labels,
		Stats:  ComputeStatistics(labels),
	}, nil
}

func isTargetAtom(store *CoordinateStore, cfg Config, id int64) bool {
	for _, a := range store.Atoms() {
		if a.ID == id {
			return a.Species == cfg.TargetSpecies
		}
	}
	return false
}
