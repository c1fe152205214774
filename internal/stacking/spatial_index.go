package stacking

import "math"

// distanceEpsilon is the floating tolerance for "equidistant" during
// nearest-candidate tie-breaks, applied to squared distances and to the
// registry-site comparison. Ties inside it resolve by lowest atom ID
// (lowest category code for sites) so results are reproducible regardless
// of iteration order.
const distanceEpsilon = 1e-9

// NeighborIndex answers bounded-radius nearest-neighbour queries over one
// voxel's candidate atom set using a regular grid hash. Cell size should
// approximately match the largest query radius so a query touches at most
// the 3x3x3 cell neighbourhood.
//
// The index is transient and read-only after Build: it is created per voxel
// task, queried, and discarded, so its memory is bounded by the halo volume
// rather than the total system size.
type NeighborIndex struct {
	cellSize float64
	atoms    []Atom
	grid     map[[3]int32][]int32
}

// NewNeighborIndex builds an index over the candidate atoms with the given
// cell size.
func NewNeighborIndex(atoms []Atom, cellSize float64) *NeighborIndex {
	ni := &NeighborIndex{
		cellSize: cellSize,
		atoms:    atoms,
		grid:     make(map[[3]int32][]int32, len(atoms)/estimatedAtomsPerCell+1),
	}
	for i, a := range atoms {
		c := ni.cellOf(a.X, a.Y, a.Z)
		ni.grid[c] = append(ni.grid[c], int32(i))
	}
	return ni
}

// estimatedAtomsPerCell sizes the initial cell map.
const estimatedAtomsPerCell = 8

func (ni *NeighborIndex) cellOf(x, y, z float64) [3]int32 {
	return [3]int32{
		int32(math.Floor(x / ni.cellSize)),
		int32(math.Floor(y / ni.cellSize)),
		int32(math.Floor(z / ni.cellSize)),
	}
}

// Len returns the number of candidate atoms in the index.
func (ni *NeighborIndex) Len() int { return len(ni.atoms) }

// AtomAt returns the candidate atom at index i.
func (ni *NeighborIndex) AtomAt(i int) Atom { return ni.atoms[i] }

// Nearest returns the index of the candidate atom nearest to (x, y, z)
// within radius for which keep reports true, using 3-D Euclidean distance.
// Candidates equidistant within floating tolerance resolve to the lowest
// atom ID. The second return is false when no candidate qualifies.
func (ni *NeighborIndex) Nearest(x, y, z, radius float64, keep func(Atom) bool) (int, bool) {
	r2 := radius * radius
	bestIdx := -1
	bestDist := math.Inf(1)

	// Cell span covering the query ball; usually ±1 when cellSize >= radius.
	span := int32(math.Ceil(radius / ni.cellSize))
	base := ni.cellOf(x, y, z)
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			for dz := -span; dz <= span; dz++ {
				cell := [3]int32{base[0] + dx, base[1] + dy, base[2] + dz}
				for _, ci := range ni.grid[cell] {
					a := ni.atoms[ci]
					ddx := a.X - x
					ddy := a.Y - y
					ddz := a.Z - z
					d2 := ddx*ddx + ddy*ddy + ddz*ddz
					if d2 > r2 || !keep(a) {
						continue
					}
					switch {
					case d2 < bestDist-distanceEpsilon:
						bestIdx, bestDist = int(ci), d2
					case d2 <= bestDist+distanceEpsilon && a.ID < ni.atoms[bestIdx].ID:
						bestIdx, bestDist = int(ci), d2
					}
				}
			}
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}
