package stacking

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultLatticeConstant is the in-plane lattice constant in ångström of the
// MoS2-family bilayers this tool was calibrated against.
const DefaultLatticeConstant = 3.19

// CanonicalSite pairs a stacking category with its canonical in-plane
// registry offset: the expected displacement from a target atom to its
// nearest reference-layer atom when the local registry is exactly that
// category.
type CanonicalSite struct {
	Type   StackingType
	Offset r2.Vec
}

// DefaultCanonicalSites returns the registry-site table for a hexagonal
// bilayer with the given lattice constant. AA sits at zero offset; the
// remaining sites sit at the high-symmetry fractional-lattice offsets.
//
// The exact vectors distinguishing the antiparallel family (AA', A'B, AB')
// are material calibration data, validated against known structures rather
// than derived from a closed-form lattice rule. Override the table in the
// Config when targeting a different material.
func DefaultCanonicalSites(latticeConstant float64) []CanonicalSite {
	// Projected nearest-site spacing of the hexagonal lattice.
	b := latticeConstant / math.Sqrt(3)
	h := latticeConstant / 2
	return []CanonicalSite{
		{Type: StackingAA, Offset: r2.Vec{X: 0, Y: 0}},
		{Type: StackingAB, Offset: r2.Vec{X: b, Y: 0}},
		{Type: StackingBA, Offset: r2.Vec{X: -b, Y: 0}},
		{Type: StackingAAPrime, Offset: r2.Vec{X: b / 2, Y: h}},
		{Type: StackingAPrimeB, Offset: r2.Vec{X: -b / 2, Y: h}},
		{Type: StackingABPrime, Offset: r2.Vec{X: 0, Y: -b}},
	}
}

// nearestSite returns the canonical site closest to the in-plane offset and
// the distance to it. This is the single shared comparison routine: all
// tolerance and rounding behaviour for categorical assignment lives here.
// Equidistant sites within floating tolerance resolve to the lowest code.
func nearestSite(sites []CanonicalSite, offset r2.Vec) (CanonicalSite, float64) {
	best := sites[0]
	bestDist := math.Inf(1)
	for _, s := range sites {
		d := r2.Norm(r2.Sub(offset, s.Offset))
		switch {
		case d < bestDist-distanceEpsilon:
			best, bestDist = s, d
		case d <= bestDist+distanceEpsilon && s.Type.Code() < best.Type.Code():
			best, bestDist = s, d
		}
	}
	return best, bestDist
}
