package stacking

import "fmt"

// SpeciesType identifies an atom species as numbered in the input structure
// file (LAMMPS atom type).
type SpeciesType int32

// Atom is one immutable atom record: unique ID, species and position in
// ångström. Records are created once at load and never mutated.
type Atom struct {
	ID      int64
	Species SpeciesType
	X, Y, Z float64
}

// Box is the axis-aligned bounding box of the structure.
type Box struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// SpanX returns the box extent along x.
func (b Box) SpanX() float64 { return b.MaxX - b.MinX }

// SpanY returns the box extent along y.
func (b Box) SpanY() float64 { return b.MaxY - b.MinY }

// SpanZ returns the box extent along z.
func (b Box) SpanZ() float64 { return b.MaxZ - b.MinZ }

// StackingType is one of the seven interlayer registry categories.
type StackingType string

const (
	StackingBA      StackingType = "BA"
	StackingAB      StackingType = "AB"
	StackingAAPrime StackingType = "AA'"
	StackingAPrimeB StackingType = "A'B"
	StackingABPrime StackingType = "AB'"
	StackingAA      StackingType = "AA"
	// StackingX marks an atom that could not be classified: free edge,
	// vacancy, missing partner or a locally defective environment. It is a
	// valid label, never an error.
	StackingX StackingType = "X"
)

// Code returns the fixed numeric code for the stacking type. The mapping is
// part of the output file format and must not change.
func (s StackingType) Code() int {
	switch s {
	case StackingBA:
		return 0
	case StackingAB:
		return 1
	case StackingAAPrime:
		return 2
	case StackingAPrimeB:
		return 3
	case StackingABPrime:
		return 4
	case StackingAA:
		return 5
	default:
		return 6
	}
}

// StackingTypeFromCode maps a numeric code back to its category.
func StackingTypeFromCode(code int) (StackingType, error) {
	switch code {
	case 0:
		return StackingBA, nil
	case 1:
		return StackingAB, nil
	case 2:
		return StackingAAPrime, nil
	case 3:
		return StackingAPrimeB, nil
	case 4:
		return StackingABPrime, nil
	case 5:
		return StackingAA, nil
	case 6:
		return StackingX, nil
	default:
		return "", fmt.Errorf("unknown stacking code %d", code)
	}
}

// StackingTypes lists all categories in code order.
var StackingTypes = []StackingType{
	StackingBA, StackingAB, StackingAAPrime, StackingAPrimeB,
	StackingABPrime, StackingAA, StackingX,
}

// StackingLabel is the classification of one target atom. OffsetX/OffsetY
// record the in-plane displacement to the nearest reference atom; both are
// zero when no reference partner was found inside the search radius.
type StackingLabel struct {
	AtomID  int64
	Type    StackingType
	Code    int
	OffsetX float64
	OffsetY float64
}

// ClassificationResult is the complete labelled table, exactly one label per
// target-species atom, ordered by ascending atom ID.
type ClassificationResult struct {
	Labels []StackingLabel
	Stats  Statistics
}
