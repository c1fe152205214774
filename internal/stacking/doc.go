// Package stacking classifies the local interlayer registry ("stacking
// type") of every target-species atom in a bilayer atomic structure.
//
// The pipeline is: a read-only CoordinateStore is tiled into voxels by the
// spatial partitioner, each voxel carrying the core atoms it owns plus a
// halo of context atoms; a worker pool classifies every target atom against
// its voxel-local neighbourhood; the merger reconciles the per-voxel outputs
// into one duplicate-free, ID-ordered result with aggregate statistics.
//
// Halo margins are sized so that a voxel task never needs to look outside
// its own candidate set, which makes the per-voxel working set roughly
// constant regardless of total system size and keeps classification
// independent of voxel-grid placement and worker count.
package stacking
