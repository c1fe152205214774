package stacking

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// stackHeader is the column row written after the atom count.
const stackHeader = "id type x y z s_type s_code"

// WriteStack writes the labelled target atoms in the .stack format consumed
// by downstream plotting and post-processing: an atom-count line, a header
// row, then one space-separated row per atom ordered by ascending ID.
func WriteStack(w io.Writer, store *CoordinateStore, result *ClassificationResult) error {
	byID := make(map[int64]Atom, len(result.Labels))
	for _, a := range store.Atoms() {
		byID[a.ID] = a
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d\n%s\n", len(result.Labels), stackHeader); err != nil {
		return err
	}
	for _, l := range result.Labels {
		a, ok := byID[l.AtomID]
		if !ok {
			return fmt.Errorf("label for unknown atom id %d", l.AtomID)
		}
		_, err := fmt.Fprintf(bw, "%d %d %s %s %s %s %d\n",
			a.ID, a.Species,
			formatCoord(a.X), formatCoord(a.Y), formatCoord(a.Z),
			l.Type, l.Code)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteStackFile writes the .stack output to a file.
func WriteStackFile(path string, store *CoordinateStore, result *ClassificationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteStack(f, store, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// StackRecord is one row of a .stack file.
type StackRecord struct {
	ID      int64
	Species SpeciesType
	X, Y, Z float64
	Type    StackingType
	Code    int
}

// ReadStack parses a .stack file written by WriteStack.
func ReadStack(r io.Reader) ([]StackRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("empty stack file")
	}
	count, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return nil, fmt.Errorf("bad atom count line %q: %w", sc.Text(), err)
	}
	if !sc.Scan() {
		return nil, fmt.Errorf("missing header row")
	}

	records := make([]StackRecord, 0, count)
	line := 2
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 7 {
			return nil, fmt.Errorf("line %d: expected 7 fields, got %d", line, len(fields))
		}
		var rec StackRecord
		if rec.ID, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
			return nil, fmt.Errorf("line %d: bad id %q: %w", line, fields[0], err)
		}
		sp, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad type %q: %w", line, fields[1], err)
		}
		rec.Species = SpeciesType(sp)
		if rec.X, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, fmt.Errorf("line %d: bad x %q: %w", line, fields[2], err)
		}
		if rec.Y, err = strconv.ParseFloat(fields[3], 64); err != nil {
			return nil, fmt.Errorf("line %d: bad y %q: %w", line, fields[3], err)
		}
		if rec.Z, err = strconv.ParseFloat(fields[4], 64); err != nil {
			return nil, fmt.Errorf("line %d: bad z %q: %w", line, fields[4], err)
		}
		if rec.Code, err = strconv.Atoi(fields[6]); err != nil {
			return nil, fmt.Errorf("line %d: bad code %q: %w", line, fields[6], err)
		}
		want, err := StackingTypeFromCode(rec.Code)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec.Type = StackingType(fields[5])
		if rec.Type != want {
			return nil, fmt.Errorf("line %d: type %q does not match code %d", line, rec.Type, rec.Code)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(records) != count {
		return nil, fmt.Errorf("atom count line says %d rows, found %d", count, len(records))
	}
	return records, nil
}

// ReadStackFile parses a .stack file from disk.
func ReadStackFile(path string) ([]StackRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadStack(f)
}
