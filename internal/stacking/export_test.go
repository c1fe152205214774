package stacking

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testExportFixture(t *testing.T) (*CoordinateStore, *ClassificationResult) {
	t.Helper()
	store, err := NewCoordinateStoreFromAtoms([]Atom{
		{ID: 7, Species: 4, X: 1.5, Y: -2.25, Z: 6.2},
		{ID: 3, Species: 4, X: 0, Y: 0, Z: 6.2},
		{ID: 1, Species: 1, X: 0, Y: 0, Z: 0},
	})
	if err != nil {
		t.Fatalf("NewCoordinateStoreFromAtoms: %v", err)
	}
	labels := []StackingLabel{
		{AtomID: 3, Type: StackingAA, Code: 5, OffsetX: 0.1},
		{AtomID: 7, Type: StackingX, Code: 6},
	}
	return store, &ClassificationResult{Labels: labels, Stats: ComputeStatistics(labels)}
}

func TestWriteStack_RoundTrip(t *testing.T) {
	store, result := testExportFixture(t)

	var buf bytes.Buffer
	if err := WriteStack(&buf, store, result); err != nil {
		t.Fatalf("WriteStack: %v", err)
	}

	records, err := ReadStack(&buf)
	if err != nil {
		t.Fatalf("ReadStack: %v", err)
	}
	want := []StackRecord{
		{ID: 3, Species: 4, X: 0, Y: 0, Z: 6.2, Type: StackingAA, Code: 5},
		{ID: 7, Species: 4, X: 1.5, Y: -2.25, Z: 6.2, Type: StackingX, Code: 6},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("round trip mismatch:\n%s", diff)
	}
}

func TestWriteStack_HeaderAndCount(t *testing.T) {
	store, result := testExportFixture(t)

	var buf bytes.Buffer
	if err := WriteStack(&buf, store, result); err != nil {
		t.Fatalf("WriteStack: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(lines))
	}
	if lines[0] != "2" {
		t.Errorf("count line = %q, want \"2\"", lines[0])
	}
	if lines[1] != stackHeader {
		t.Errorf("header = %q, want %q", lines[1], stackHeader)
	}
	if !strings.HasPrefix(lines[2], "3 4 ") {
		t.Errorf("first row = %q, want atom 3 first", lines[2])
	}
}

func TestReadStack_RejectsCountMismatch(t *testing.T) {
	in := "3\n" + stackHeader + "\n" +
		"1 4 0 0 6.2 AA 5\n"
	if _, err := ReadStack(strings.NewReader(in)); err == nil {
		t.Fatal("expected error for row count below header count")
	}
}

func TestReadStack_RejectsTypeCodeMismatch(t *testing.T) {
	in := "1\n" + stackHeader + "\n" +
		"1 4 0 0 6.2 AA 1\n" // code 1 is AB
	if _, err := ReadStack(strings.NewReader(in)); err == nil {
		t.Fatal("expected error for type/code disagreement")
	}
}

func TestReadStack_RejectsShortRow(t *testing.T) {
	in := "1\n" + stackHeader + "\n" +
		"1 4 0 0 6.2 AA\n"
	if _, err := ReadStack(strings.NewReader(in)); err == nil {
		t.Fatal("expected error for row with missing field")
	}
}
