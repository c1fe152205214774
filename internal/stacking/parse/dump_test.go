package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDump = `ITEM: TIMESTEP
120000
ITEM: NUMBER OF ATOMS
4
ITEM: BOX BOUNDS pp pp ss
0.0 63.8
0.0 55.2
-10.0 20.0
ITEM: ATOMS id type x y z
1 1 0.0 0.0 0.0
2 1 3.19 0.0 0.0
4 4 1.8418 0.0 6.2
3 2 1.595 0.9209 1.56
`

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.dump")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadDump_ParsesFrame(t *testing.T) {
	snap, err := ReadDump(strings.NewReader(sampleDump))
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if snap.Timestep != 120000 {
		t.Errorf("Timestep = %d, want 120000", snap.Timestep)
	}
	if len(snap.Atoms) != 4 {
		t.Fatalf("atoms = %d, want 4", len(snap.Atoms))
	}
	if snap.Box.MaxX != 63.8 || snap.Box.MinZ != -10.0 {
		t.Errorf("box = %+v, want x max 63.8 and z min -10", snap.Box)
	}
	a := snap.Atoms[2]
	if a.ID != 4 || a.Species != 4 || a.Z != 6.2 {
		t.Errorf("third row parsed as %+v", a)
	}
}

func TestReadDump_ColumnOrderIndependent(t *testing.T) {
	reordered := `ITEM: TIMESTEP
0
ITEM: NUMBER OF ATOMS
1
ITEM: BOX BOUNDS pp pp pp
0 10
0 10
0 10
ITEM: ATOMS type z y x id
4 6.2 2.0 1.0 9
`
	snap, err := ReadDump(strings.NewReader(reordered))
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	a := snap.Atoms[0]
	if a.ID != 9 || a.Species != 4 || a.X != 1.0 || a.Y != 2.0 || a.Z != 6.2 {
		t.Errorf("atom = %+v, want id 9 at (1, 2, 6.2)", a)
	}
}

func TestReadDump_TriclinicBoundsRow(t *testing.T) {
	triclinic := strings.Replace(sampleDump,
		"ITEM: BOX BOUNDS pp pp ss\n0.0 63.8\n",
		"ITEM: BOX BOUNDS xy xz yz pp pp ss\n0.0 63.8 1.5\n", 1)
	snap, err := ReadDump(strings.NewReader(triclinic))
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if snap.Box.MaxX != 63.8 {
		t.Errorf("MaxX = %g, want 63.8 with tilt value ignored", snap.Box.MaxX)
	}
}

func TestReadDump_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"truncated atoms", strings.Replace(sampleDump, "3 2 1.595 0.9209 1.56\n", "", 1)},
		{"missing column", strings.Replace(sampleDump, "ITEM: ATOMS id type x y z", "ITEM: ATOMS id type x y", 1)},
		{"inverted bounds", strings.Replace(sampleDump, "0.0 63.8", "63.8 0.0", 1)},
		{"bad timestep", strings.Replace(sampleDump, "120000", "twelve", 1)},
		{"non-finite coordinate", strings.Replace(sampleDump, "1 1 0.0 0.0 0.0", "1 1 nan 0.0 0.0", 1)},
		{"zero atom count", strings.Replace(sampleDump, "ITEM: NUMBER OF ATOMS\n4", "ITEM: NUMBER OF ATOMS\n0", 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadDump(strings.NewReader(tc.in)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestReadMetadata_HeaderOnly(t *testing.T) {
	path := writeDump(t, sampleDump)
	meta, err := ReadMetadata(path)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if meta.AtomCount != 4 {
		t.Errorf("AtomCount = %d, want 4", meta.AtomCount)
	}
	if meta.Timestep != 120000 {
		t.Errorf("Timestep = %d, want 120000", meta.Timestep)
	}
	if got := strings.Join(meta.Columns, " "); got != "id type x y z" {
		t.Errorf("Columns = %q", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(writeDump(t, sampleDump)); err != nil {
		t.Errorf("Validate(good) = %v, want nil", err)
	}
	bad := strings.Replace(sampleDump, "ITEM: ATOMS id type x y z", "ITEM: ATOMS id x y z", 1)
	if err := Validate(writeDump(t, bad)); err == nil {
		t.Error("Validate(missing type column) = nil, want error")
	}
}
