package stacking

import (
	"fmt"
	"math"
)

// VoxelIndex addresses one voxel in the 3-D grid.
type VoxelIndex struct {
	X, Y, Z int
}

func (v VoxelIndex) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// Voxel is one spatial work unit: the core region it owns, the enlarged
// halo region it may read, and the atoms falling in each. Core lists index
// into the CoordinateStore; Halo is a superset of Core.
type Voxel struct {
	Index            VoxelIndex
	CoreMin, CoreMax [3]float64
	HaloMin, HaloMax [3]float64
	Core             []int
	Halo             []int
}

// VoxelGrid tiles the bounding box into voxels of edge VoxelSize with halo
// margin HaloMargin. Core regions exactly partition the box: every atom is
// core in exactly one voxel, and an atom on a core boundary plane belongs to
// the higher-index cell (the final cell clamps the box maximum), never both.
type VoxelGrid struct {
	NX, NY, NZ int
	VoxelSize  float64
	HaloMargin float64
	Origin     [3]float64
	Voxels     []Voxel
}

// Partition tiles the store's bounding box and assigns every atom a core
// owner plus halo visibility. An atom within HaloMargin of a voxel's core is
// listed in that voxel's halo, so a voxel task never needs atoms outside its
// own candidate set. Rejects configurations whose voxel edge is smaller than
// the required halo margin.
func Partition(store *CoordinateStore, cfg Config) (*VoxelGrid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	box := store.Box()
	v := cfg.VoxelSize
	m := cfg.HaloMargin()

	g := &VoxelGrid{
		NX:         cellCount(box.SpanX(), v),
		NY:         cellCount(box.SpanY(), v),
		NZ:         cellCount(box.SpanZ(), v),
		VoxelSize:  v,
		HaloMargin: m,
		Origin:     [3]float64{box.MinX, box.MinY, box.MinZ},
	}
	g.Voxels = make([]Voxel, g.NX*g.NY*g.NZ)
	for ix := 0; ix < g.NX; ix++ {
		for iy := 0; iy < g.NY; iy++ {
			for iz := 0; iz < g.NZ; iz++ {
				vox := &g.Voxels[g.flat(ix, iy, iz)]
				vox.Index = VoxelIndex{X: ix, Y: iy, Z: iz}
				vox.CoreMin = [3]float64{box.MinX + float64(ix)*v, box.MinY + float64(iy)*v, box.MinZ + float64(iz)*v}
				vox.CoreMax = [3]float64{box.MinX + float64(ix+1)*v, box.MinY + float64(iy+1)*v, box.MinZ + float64(iz+1)*v}
				vox.HaloMin = [3]float64{vox.CoreMin[0] - m, vox.CoreMin[1] - m, vox.CoreMin[2] - m}
				vox.HaloMax = [3]float64{vox.CoreMax[0] + m, vox.CoreMax[1] + m, vox.CoreMax[2] + m}
			}
		}
	}

	for ai, a := range store.Atoms() {
		ix := g.cellIdx(a.X, box.MinX, g.NX)
		iy := g.cellIdx(a.Y, box.MinY, g.NY)
		iz := g.cellIdx(a.Z, box.MinZ, g.NZ)
		g.Voxels[g.flat(ix, iy, iz)].Core = append(g.Voxels[g.flat(ix, iy, iz)].Core, ai)

		// Halo visibility: every voxel whose enlarged bounds contain the atom.
		xlo, xhi := g.cellRange(a.X, box.MinX, g.NX, m)
		ylo, yhi := g.cellRange(a.Y, box.MinY, g.NY, m)
		zlo, zhi := g.cellRange(a.Z, box.MinZ, g.NZ, m)
		for hx := xlo; hx <= xhi; hx++ {
			for hy := ylo; hy <= yhi; hy++ {
				for hz := zlo; hz <= zhi; hz++ {
					vox := &g.Voxels[g.flat(hx, hy, hz)]
					vox.Halo = append(vox.Halo, ai)
				}
			}
		}
	}

	return g, nil
}

func cellCount(span, voxelSize float64) int {
	n := int(math.Ceil(span / voxelSize))
	if n < 1 {
		n = 1
	}
	return n
}

func (g *VoxelGrid) flat(ix, iy, iz int) int {
	return (ix*g.NY+iy)*g.NZ + iz
}

// VoxelAt returns the voxel with the given grid index.
func (g *VoxelGrid) VoxelAt(idx VoxelIndex) *Voxel {
	return &g.Voxels[g.flat(idx.X, idx.Y, idx.Z)]
}

// cellIdx maps a coordinate to its owning cell along one axis. The floor
// places a boundary-plane atom in the higher-index cell; the clamp keeps the
// box maximum inside the final cell. Exactly one owner either way.
func (g *VoxelGrid) cellIdx(coord, origin float64, n int) int {
	i := int(math.Floor((coord - origin) / g.VoxelSize))
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return i
}

// cellRange returns the cells along one axis whose halo (core ± margin)
// contains the coordinate.
func (g *VoxelGrid) cellRange(coord, origin float64, n int, margin float64) (int, int) {
	lo := int(math.Floor((coord - origin - margin) / g.VoxelSize))
	hi := int(math.Floor((coord - origin + margin) / g.VoxelSize))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
