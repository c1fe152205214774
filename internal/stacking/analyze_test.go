package stacking

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// syntheticBilayer builds a shifted triangular bilayer of about a thousand
// atoms: a 24x24 reference lattice of species 1 at z=0, a 22x22 target
// lattice of species 4 at the
// interlayer height displaced by the AB registry vector, and a sprinkle of
// species-2 atoms the classifier must ignore. The reference sheet overhangs
// the target sheet so every target has a complete in-plane environment, and
// a small deterministic ripple keeps the geometry off exact lattice points
// without leaving the tolerance disc.
func syntheticBilayer(t *testing.T) *CoordinateStore {
	t.Helper()

	const a = DefaultLatticeConstant
	ax, ay := a/2, a*math.Sqrt(3)/2
	ab := siteOffset(t, StackingAB)

	var atoms []Atom
	id := int64(1)
	for i := 0; i < 24; i++ {
		for j := 0; j < 24; j++ {
			atoms = append(atoms, Atom{
				ID:      id,
				Species: 1,
				X:       float64(i)*a + float64(j)*ax,
				Y:       float64(j) * ay,
			})
			id++
		}
	}
	for i := 1; i < 23; i++ {
		for j := 1; j < 23; j++ {
			ripple := 0.02 * math.Sin(float64(i)+2*float64(j))
			atoms = append(atoms, Atom{
				ID:      id,
				Species: 4,
				X:       float64(i)*a + float64(j)*ax + ab.X + ripple,
				Y:       float64(j)*ay + ab.Y,
				Z:       testInterlayer,
			})
			id++
		}
	}
	for i := 0; i < 10; i++ {
		atoms = append(atoms, Atom{
			ID:      id,
			Species: 2,
			X:       float64(i) * 5,
			Y:       float64(i) * 3,
			Z:       testInterlayer / 2,
		})
		id++
	}

	store, err := NewCoordinateStoreFromAtoms(atoms)
	if err != nil {
		t.Fatalf("NewCoordinateStoreFromAtoms: %v", err)
	}
	return store
}

func analyzeBilayer(t *testing.T, cfg Config) *ClassificationResult {
	t.Helper()
	an, err := NewAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	res, err := an.Analyze(context.Background(), syntheticBilayer(t))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return res
}

func TestAnalyze_ShiftedBilayerClassifiesUniformly(t *testing.T) {
	res := analyzeBilayer(t, DefaultConfig())

	if want := 22 * 22; res.Stats.Total != want {
		t.Fatalf("Total = %d, want %d", res.Stats.Total, want)
	}
	// Every target's nearest reference is one lattice vector past the shift,
	// leaving a residual offset inside the AB tolerance disc for the whole
	// sheet.
	for _, l := range res.Labels {
		if l.Type != StackingAB {
			t.Fatalf("atom %d classified %s, want AB for a uniformly shifted sheet", l.AtomID, l.Type)
		}
	}
	if p := res.Stats.Percent(StackingAB); math.Abs(p-100) > 1e-9 {
		t.Errorf("Percent(AB) = %v, want 100", p)
	}
}

func TestAnalyze_ResultIndependentOfVoxelSize(t *testing.T) {
	// The default 150 Å voxel covers the whole sheet in one cell; 25 Å tiles
	// it into many cells whose halos must reproduce the same neighbourhoods.
	coarse := analyzeBilayer(t, DefaultConfig())
	fine := analyzeBilayer(t, DefaultConfig().WithVoxelSize(25))

	if diff := cmp.Diff(coarse, fine); diff != "" {
		t.Errorf("voxel size changed the result (-150 +25):\n%s", diff)
	}
}

func TestAnalyze_ResultIndependentOfWorkerCount(t *testing.T) {
	cfg := DefaultConfig().WithVoxelSize(25)
	base := analyzeBilayer(t, cfg.WithWorkers(1))
	for _, w := range []int{4, 8} {
		got := analyzeBilayer(t, cfg.WithWorkers(w))
		if diff := cmp.Diff(base, got); diff != "" {
			t.Errorf("workers=%d changed the result:\n%s", w, diff)
		}
	}
}

func TestAnalyze_CancelledContextAborts(t *testing.T) {
	an, err := NewAnalyzer(DefaultConfig().WithVoxelSize(25))
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := an.Analyze(ctx, syntheticBilayer(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Error("partial result returned after cancellation")
	}
}

func TestAnalyze_MissingTargetSpeciesFails(t *testing.T) {
	an, err := NewAnalyzer(DefaultConfig().WithTargetSpecies(7).WithReferenceSpecies(1))
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	_, err = an.Analyze(context.Background(), syntheticBilayer(t))
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	if cerr.Field != "TargetSpecies" {
		t.Errorf("Field = %s, want TargetSpecies", cerr.Field)
	}
}
