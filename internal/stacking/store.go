package stacking

import (
	"fmt"
	"math"
)

// CoordinateStore is the read-only source of truth for atom records. It is
// built once from the loader's output and shared by reference across all
// workers without locking; nothing mutates it after construction.
type CoordinateStore struct {
	atoms     []Atom
	box       Box
	bySpecies map[SpeciesType]int
}

// NewCoordinateStore builds a store over the given atoms and bounding box.
// It enforces the loader contract the core depends on: unique IDs and finite
// coordinates. Violations are reported as ConfigurationError.
func NewCoordinateStore(atoms []Atom, box Box) (*CoordinateStore, error) {
	seen := make(map[int64]struct{}, len(atoms))
	bySpecies := make(map[SpeciesType]int)
	for _, a := range atoms {
		if _, dup := seen[a.ID]; dup {
			return nil, &ConfigurationError{Field: "Atoms", Reason: fmt.Sprintf("duplicate atom id %d", a.ID)}
		}
		seen[a.ID] = struct{}{}
		if !finite(a.X) || !finite(a.Y) || !finite(a.Z) {
			return nil, &ConfigurationError{Field: "Atoms", Reason: fmt.Sprintf("atom %d has non-finite coordinates (%g, %g, %g)", a.ID, a.X, a.Y, a.Z)}
		}
		bySpecies[a.Species]++
	}
	return &CoordinateStore{atoms: atoms, box: box, bySpecies: bySpecies}, nil
}

// NewCoordinateStoreFromAtoms builds a store computing the bounding box from
// the atom positions themselves.
func NewCoordinateStoreFromAtoms(atoms []Atom) (*CoordinateStore, error) {
	if len(atoms) == 0 {
		return nil, &ConfigurationError{Field: "Atoms", Reason: "empty atom set"}
	}
	box := Box{
		MinX: math.Inf(1), MinY: math.Inf(1), MinZ: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1), MaxZ: math.Inf(-1),
	}
	for _, a := range atoms {
		box.MinX = math.Min(box.MinX, a.X)
		box.MinY = math.Min(box.MinY, a.Y)
		box.MinZ = math.Min(box.MinZ, a.Z)
		box.MaxX = math.Max(box.MaxX, a.X)
		box.MaxY = math.Max(box.MaxY, a.Y)
		box.MaxZ = math.Max(box.MaxZ, a.Z)
	}
	return NewCoordinateStore(atoms, box)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Len returns the total number of atoms.
func (s *CoordinateStore) Len() int { return len(s.atoms) }

// AtomAt returns the atom at positional index i.
func (s *CoordinateStore) AtomAt(i int) Atom { return s.atoms[i] }

// Atoms exposes the backing slice. Callers must treat it as read-only.
func (s *CoordinateStore) Atoms() []Atom { return s.atoms }

// Box returns the structure bounding box.
func (s *CoordinateStore) Box() Box { return s.box }

// CountSpecies returns how many atoms of species t the store holds.
func (s *CoordinateStore) CountSpecies(t SpeciesType) int { return s.bySpecies[t] }
