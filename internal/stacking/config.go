package stacking

import "fmt"

// Default configuration values, carried over from the validated production
// calibration for MoS2-family bilayers.
const (
	// DefaultVoxelSize is the voxel edge length in ångström.
	DefaultVoxelSize = 150.0
	// DefaultDistanceTolerance is the acceptance radius in offset space for
	// assigning a canonical registry site.
	DefaultDistanceTolerance = 0.614
	// DefaultSameSpeciesThreshold bounds the nearest same-species neighbour
	// distance of a reference atom for its environment to count as
	// structurally consistent. It must exceed the reference sublattice
	// spacing (3.19 Å for the default material).
	DefaultSameSpeciesThreshold = 3.5
	// DefaultSearchRadius is the 3-D radius for the nearest-reference-atom
	// search. It must cover the interlayer spacing plus the largest
	// classifiable in-plane offset.
	DefaultSearchRadius = 7.5
	// DefaultTargetSpecies is the top-layer metal species in the standard
	// six-type bilayer numbering.
	DefaultTargetSpecies SpeciesType = 4
	// DefaultReferenceSpecies is the bottom-layer metal species defining
	// interlayer registry.
	DefaultReferenceSpecies SpeciesType = 1
)

// Config holds every value the core consumes. It is an explicit immutable
// record: the With* helpers take and return values, and a validated Config
// is passed by value into the pipeline.
type Config struct {
	// VoxelSize is the voxel edge length V in ångström. It must be at least
	// the halo margin, otherwise halo coverage near cell faces would be
	// insufficient for correct neighbour search.
	VoxelSize float64

	// DistanceTolerance is the acceptance radius around a canonical
	// registry-site offset.
	DistanceTolerance float64

	// SameSpeciesThreshold is the maximum nearest same-species neighbour
	// distance for a reference atom's environment to be considered
	// structurally consistent rather than defective.
	SameSpeciesThreshold float64

	// SearchRadius is the 3-D Euclidean radius of the nearest-reference
	// search. A target with no reference atom inside it is labelled X.
	SearchRadius float64

	// Workers is the worker-pool size. Zero means all available CPUs.
	Workers int

	// TargetSpecies selects the atoms to classify.
	TargetSpecies SpeciesType

	// ReferenceSpecies are the opposite-layer species defining interlayer
	// registry.
	ReferenceSpecies []SpeciesType

	// Sites is the canonical registry-site table.
	Sites []CanonicalSite
}

// DefaultConfig returns the production calibration for MoS2-family bilayers.
func DefaultConfig() Config {
	return Config{
		VoxelSize:            DefaultVoxelSize,
		DistanceTolerance:    DefaultDistanceTolerance,
		SameSpeciesThreshold: DefaultSameSpeciesThreshold,
		SearchRadius:         DefaultSearchRadius,
		Workers:              0,
		TargetSpecies:        DefaultTargetSpecies,
		ReferenceSpecies:     []SpeciesType{DefaultReferenceSpecies},
		Sites:                DefaultCanonicalSites(DefaultLatticeConstant),
	}
}

// HaloMargin returns the halo margin M derived from the configured search
// distances: the classifier reaches at most SearchRadius from a target and a
// further SameSpeciesThreshold from the chosen reference atom.
func (c Config) HaloMargin() float64 {
	return c.SearchRadius + c.SameSpeciesThreshold
}

// Validate checks the configuration. Every violation is a
// ConfigurationError and is raised before any dispatch happens.
func (c Config) Validate() error {
	if c.VoxelSize <= 0 {
		return &ConfigurationError{Field: "VoxelSize", Reason: fmt.Sprintf("must be positive, got %g", c.VoxelSize)}
	}
	if c.DistanceTolerance <= 0 {
		return &ConfigurationError{Field: "DistanceTolerance", Reason: fmt.Sprintf("must be positive, got %g", c.DistanceTolerance)}
	}
	if c.SameSpeciesThreshold <= 0 {
		return &ConfigurationError{Field: "SameSpeciesThreshold", Reason: fmt.Sprintf("must be positive, got %g", c.SameSpeciesThreshold)}
	}
	if c.SearchRadius <= 0 {
		return &ConfigurationError{Field: "SearchRadius", Reason: fmt.Sprintf("must be positive, got %g", c.SearchRadius)}
	}
	if c.Workers < 0 {
		return &ConfigurationError{Field: "Workers", Reason: fmt.Sprintf("must be non-negative, got %d", c.Workers)}
	}
	if c.TargetSpecies <= 0 {
		return &ConfigurationError{Field: "TargetSpecies", Reason: fmt.Sprintf("unknown species identifier %d", c.TargetSpecies)}
	}
	if len(c.ReferenceSpecies) == 0 {
		return &ConfigurationError{Field: "ReferenceSpecies", Reason: "at least one reference species is required"}
	}
	for _, s := range c.ReferenceSpecies {
		if s <= 0 {
			return &ConfigurationError{Field: "ReferenceSpecies", Reason: fmt.Sprintf("unknown species identifier %d", s)}
		}
		if s == c.TargetSpecies {
			return &ConfigurationError{Field: "ReferenceSpecies", Reason: fmt.Sprintf("species %d is also the target species", s)}
		}
	}
	if len(c.Sites) == 0 {
		return &ConfigurationError{Field: "Sites", Reason: "canonical registry-site table is empty"}
	}
	if m := c.HaloMargin(); c.VoxelSize < m {
		return &ConfigurationError{
			Field:  "VoxelSize",
			Reason: fmt.Sprintf("%g is smaller than the required halo margin %g (SearchRadius + SameSpeciesThreshold)", c.VoxelSize, m),
		}
	}
	return nil
}

// WithVoxelSize returns a copy with the voxel edge length set.
func (c Config) WithVoxelSize(v float64) Config {
	c.VoxelSize = v
	return c
}

// WithDistanceTolerance returns a copy with the registry tolerance set.
func (c Config) WithDistanceTolerance(tol float64) Config {
	c.DistanceTolerance = tol
	return c
}

// WithSameSpeciesThreshold returns a copy with the consistency threshold set.
func (c Config) WithSameSpeciesThreshold(d float64) Config {
	c.SameSpeciesThreshold = d
	return c
}

// WithSearchRadius returns a copy with the neighbour-search radius set.
func (c Config) WithSearchRadius(r float64) Config {
	c.SearchRadius = r
	return c
}

// WithWorkers returns a copy with the worker-pool size set.
func (c Config) WithWorkers(n int) Config {
	c.Workers = n
	return c
}

// WithTargetSpecies returns a copy with the target species set.
func (c Config) WithTargetSpecies(s SpeciesType) Config {
	c.TargetSpecies = s
	return c
}

// WithReferenceSpecies returns a copy with the reference species set.
func (c Config) WithReferenceSpecies(species ...SpeciesType) Config {
	c.ReferenceSpecies = species
	return c
}

// WithSites returns a copy with the canonical registry-site table set.
func (c Config) WithSites(sites []CanonicalSite) Config {
	c.Sites = sites
	return c
}
