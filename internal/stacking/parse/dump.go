// Package parse reads single-frame LAMMPS dump files into the atom records
// and bounding box the stacking core consumes.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lattice-data/stacking.report/internal/stacking"
)

// Snapshot is one parsed dump frame.
type Snapshot struct {
	Timestep int64
	Box      stacking.Box
	Atoms    []stacking.Atom
	// Columns is the full column list from the ITEM: ATOMS line. Extra
	// columns (forces, energies, stresses) are detected but not parsed.
	Columns []string
}

// Metadata describes a dump file without loading its atom records.
type Metadata struct {
	Timestep  int64
	AtomCount int
	Box       stacking.Box
	Columns   []string
}

// requiredColumns must all be present in the ITEM: ATOMS line.
var requiredColumns = []string{"id", "type", "x", "y", "z"}

// ReadDumpFile parses a single-frame LAMMPS dump file from disk.
func ReadDumpFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap, err := ReadDump(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// ReadDump parses a single-frame LAMMPS dump. The expected layout is the
// standard nine header lines (TIMESTEP, NUMBER OF ATOMS, BOX BOUNDS with
// three bound rows) followed by the ITEM: ATOMS section.
func ReadDump(r io.Reader) (*Snapshot, error) {
	sc := newScanner(r)

	timestep, err := readTimestep(sc)
	if err != nil {
		return nil, err
	}
	count, err := readAtomCount(sc)
	if err != nil {
		return nil, err
	}
	box, err := readBoxBounds(sc)
	if err != nil {
		return nil, err
	}
	columns, colIdx, err := readAtomsHeader(sc)
	if err != nil {
		return nil, err
	}

	atoms := make([]stacking.Atom, 0, count)
	for len(atoms) < count {
		if !sc.Scan() {
			return nil, fmt.Errorf("truncated atom section: expected %d rows, got %d", count, len(atoms))
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < len(columns) {
			return nil, fmt.Errorf("atom row %d: expected %d fields, got %d", len(atoms)+1, len(columns), len(fields))
		}
		atom, err := parseAtomRow(fields, colIdx)
		if err != nil {
			return nil, fmt.Errorf("atom row %d: %w", len(atoms)+1, err)
		}
		atoms = append(atoms, atom)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return &Snapshot{Timestep: timestep, Box: box, Atoms: atoms, Columns: columns}, nil
}

// ReadMetadata reads only the dump header.
func ReadMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := newScanner(f)
	timestep, err := readTimestep(sc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	count, err := readAtomCount(sc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	box, err := readBoxBounds(sc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	columns, _, err := readAtomsHeader(sc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Metadata{Timestep: timestep, AtomCount: count, Box: box, Columns: columns}, nil
}

// Validate checks that the file looks like a single-frame LAMMPS dump with
// the columns the analysis needs.
func Validate(path string) error {
	_, err := ReadMetadata(path)
	return err
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return sc
}

func nextLine(sc *bufio.Scanner) (string, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}

func readTimestep(sc *bufio.Scanner) (int64, error) {
	line, err := nextLine(sc)
	if err != nil {
		return 0, err
	}
	if !strings.HasPrefix(line, "ITEM: TIMESTEP") {
		return 0, fmt.Errorf("expected ITEM: TIMESTEP, got %q", line)
	}
	line, err = nextLine(sc)
	if err != nil {
		return 0, err
	}
	ts, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad timestep %q: %w", line, err)
	}
	return ts, nil
}

func readAtomCount(sc *bufio.Scanner) (int, error) {
	line, err := nextLine(sc)
	if err != nil {
		return 0, err
	}
	if !strings.HasPrefix(line, "ITEM: NUMBER OF ATOMS") {
		return 0, fmt.Errorf("expected ITEM: NUMBER OF ATOMS, got %q", line)
	}
	line, err = nextLine(sc)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("bad atom count %q", line)
	}
	return n, nil
}

func readBoxBounds(sc *bufio.Scanner) (stacking.Box, error) {
	var box stacking.Box
	line, err := nextLine(sc)
	if err != nil {
		return box, err
	}
	if !strings.HasPrefix(line, "ITEM: BOX BOUNDS") {
		return box, fmt.Errorf("expected ITEM: BOX BOUNDS, got %q", line)
	}
	bounds := [3][2]float64{}
	for i := 0; i < 3; i++ {
		line, err := nextLine(sc)
		if err != nil {
			return box, err
		}
		fields := strings.Fields(line)
		// Triclinic boxes carry a third tilt value; only lo/hi matter here.
		if len(fields) < 2 {
			return box, fmt.Errorf("bad box bounds line %q", line)
		}
		lo, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return box, fmt.Errorf("bad box bound %q: %w", fields[0], err)
		}
		hi, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return box, fmt.Errorf("bad box bound %q: %w", fields[1], err)
		}
		if hi < lo {
			return box, fmt.Errorf("box bounds inverted: %g > %g", lo, hi)
		}
		bounds[i] = [2]float64{lo, hi}
	}
	box.MinX, box.MaxX = bounds[0][0], bounds[0][1]
	box.MinY, box.MaxY = bounds[1][0], bounds[1][1]
	box.MinZ, box.MaxZ = bounds[2][0], bounds[2][1]
	return box, nil
}

func readAtomsHeader(sc *bufio.Scanner) ([]string, map[string]int, error) {
	line, err := nextLine(sc)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasPrefix(line, "ITEM: ATOMS") {
		return nil, nil, fmt.Errorf("expected ITEM: ATOMS, got %q", line)
	}
	columns := strings.Fields(strings.TrimPrefix(line, "ITEM: ATOMS"))
	colIdx := make(map[string]int, len(columns))
	for i, c := range columns {
		colIdx[c] = i
	}
	for _, want := range requiredColumns {
		if _, ok := colIdx[want]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q (have %v)", want, columns)
		}
	}
	return columns, colIdx, nil
}

func parseAtomRow(fields []string, colIdx map[string]int) (stacking.Atom, error) {
	var atom stacking.Atom
	id, err := strconv.ParseInt(fields[colIdx["id"]], 10, 64)
	if err != nil {
		return atom, fmt.Errorf("bad id %q: %w", fields[colIdx["id"]], err)
	}
	typ, err := strconv.ParseInt(fields[colIdx["type"]], 10, 32)
	if err != nil {
		return atom, fmt.Errorf("bad type %q: %w", fields[colIdx["type"]], err)
	}
	atom.ID = id
	atom.Species = stacking.SpeciesType(typ)
	for _, c := range []struct {
		name string
		dst  *float64
	}{{"x", &atom.X}, {"y", &atom.Y}, {"z", &atom.Z}} {
		v, err := strconv.ParseFloat(fields[colIdx[c.name]], 64)
		if err != nil {
			return atom, fmt.Errorf("bad %s %q: %w", c.name, fields[colIdx[c.name]], err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return atom, fmt.Errorf("non-finite %s for atom %d", c.name, id)
		}
		*c.dst = v
	}
	return atom, nil
}
