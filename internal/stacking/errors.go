package stacking

import "fmt"

// ConfigurationError reports an invalid core configuration or an input that
// violates a precondition (unknown species, non-finite coordinate, duplicate
// atom ID). It is always raised before dispatch.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// PartitionIntegrityError reports a violation of the voxel tiling contract:
// an atom left unowned, or claimed by more than one voxel. This is a bug in
// the partitioner, not a recoverable runtime condition, and it always names
// the implicated atom and voxel(s).
type PartitionIntegrityError struct {
	AtomID int64
	Voxels []VoxelIndex
	Reason string
}

func (e *PartitionIntegrityError) Error() string {
	if len(e.Voxels) > 0 {
		return fmt.Sprintf("partition integrity violated: atom %d: %s (voxels %v)", e.AtomID, e.Reason, e.Voxels)
	}
	return fmt.Sprintf("partition integrity violated: atom %d: %s", e.AtomID, e.Reason)
}

// WorkerFailure reports a voxel task that crashed or failed. The dispatcher
// cancels remaining work and propagates the failure with the originating
// voxel index.
type WorkerFailure struct {
	Voxel VoxelIndex
	Err   error
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("voxel %s: worker failed: %v", e.Voxel, e.Err)
}

func (e *WorkerFailure) Unwrap() error { return e.Err }
