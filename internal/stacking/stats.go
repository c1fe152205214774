package stacking

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CategoryStats aggregates one stacking category.
type CategoryStats struct {
	Count   int
	Percent float64
	// MeanOffset and StdOffset summarise the in-plane offset magnitudes of
	// the category's atoms in ångström. Not meaningful for X.
	MeanOffset float64
	StdOffset  float64
}

// Statistics aggregates a classification run: total classified atoms plus
// count, percentage and offset spread per category. Percentages sum to 100
// within floating-point rounding.
type Statistics struct {
	Total  int
	ByType map[StackingType]CategoryStats
}

// ComputeStatistics derives aggregate statistics from a merged label table.
func ComputeStatistics(labels []StackingLabel) Statistics {
	s := Statistics{
		Total:  len(labels),
		ByType: make(map[StackingType]CategoryStats, len(StackingTypes)),
	}
	if s.Total == 0 {
		return s
	}

	offsets := make(map[StackingType][]float64, len(StackingTypes))
	counts := make(map[StackingType]int, len(StackingTypes))
	for _, l := range labels {
		counts[l.Type]++
		if l.Type != StackingX {
			offsets[l.Type] = append(offsets[l.Type], math.Hypot(l.OffsetX, l.OffsetY))
		}
	}

	for t, n := range counts {
		cs := CategoryStats{
			Count:   n,
			Percent: 100 * float64(n) / float64(s.Total),
		}
		if mags := offsets[t]; len(mags) > 0 {
			mean, std := stat.MeanStdDev(mags, nil)
			cs.MeanOffset = mean
			if len(mags) > 1 && !math.IsNaN(std) {
				cs.StdOffset = std
			}
		}
		s.ByType[t] = cs
	}
	return s
}

// Count returns the atom count for one category.
func (s Statistics) Count(t StackingType) int { return s.ByType[t].Count }

// Percent returns the percentage share for one category.
func (s Statistics) Percent(t StackingType) float64 { return s.ByType[t].Percent }
