package stacking

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Classifier assigns a stacking label to a target atom from its local
// neighbour environment. It is pure and stateless after construction:
// identical geometric inputs always produce an identical label, independent
// of evaluation order, which is what makes per-voxel parallel evaluation
// safe.
type Classifier struct {
	cfg        Config
	refSpecies map[SpeciesType]bool
}

// NewClassifier builds a classifier for the given configuration. The
// configuration is assumed validated.
func NewClassifier(cfg Config) *Classifier {
	ref := make(map[SpeciesType]bool, len(cfg.ReferenceSpecies))
	for _, s := range cfg.ReferenceSpecies {
		ref[s] = true
	}
	return &Classifier{cfg: cfg, refSpecies: ref}
}

// Classify labels one target atom against the candidate set in idx. The
// candidate set must cover at least SearchRadius + SameSpeciesThreshold
// around the target; the partitioner's halo margin guarantees this.
//
// The steps are: nearest reference-layer atom by 3-D distance (none within
// the search radius labels X); in-plane offset to it; nearest canonical
// registry site within the distance tolerance; and a structural-consistency
// cross-check on the reference atom's own sublattice. Any failed step
// labels X — never an error.
func (c *Classifier) Classify(target Atom, idx *NeighborIndex) StackingLabel {
	label := StackingLabel{AtomID: target.ID, Type: StackingX, Code: StackingX.Code()}

	refIdx, ok := idx.Nearest(target.X, target.Y, target.Z, c.cfg.SearchRadius, func(a Atom) bool {
		return c.refSpecies[a.Species]
	})
	if !ok {
		// Free edge, vacancy or missing partner.
		return label
	}
	ref := idx.AtomAt(refIdx)

	offset := r2.Vec{X: ref.X - target.X, Y: ref.Y - target.Y}
	label.OffsetX = offset.X
	label.OffsetY = offset.Y

	site, dist := nearestSite(c.cfg.Sites, offset)
	if dist > c.cfg.DistanceTolerance {
		return label
	}

	// The chosen reference atom must sit in an intact sublattice: its own
	// nearest same-species neighbour within the consistency threshold.
	// A too-perturbed or defective environment forces X regardless of the
	// registry-site match.
	if _, ok := idx.Nearest(ref.X, ref.Y, ref.Z, c.cfg.SameSpeciesThreshold, func(a Atom) bool {
		return a.Species == ref.Species && a.ID != ref.ID
	}); !ok {
		return label
	}

	label.Type = site.Type
	label.Code = site.Type.Code()
	return label
}
