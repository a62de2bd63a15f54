package gwl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/geometry"
	"ahmes-go/pkg/units"
)

func smallBlock(originX float64) *geometry.Block {
	b := geometry.NewBlock(coord(originX, 0, 0), 0)
	b.AddSlice(um(1), geometry.Slice{Paths: []geometry.Path{{coord(0, 0, 0)}}})
	return b
}

func TestWriteScriptHeaderAndTraversal(t *testing.T) {
	var buf bytes.Buffer
	d, err := WriteScript(&buf, units.Milliwatts(50), units.MicrometersPerSecond(100000),
		smallBlock(10), smallBlock(25))
	if err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}

	want := []string{
		"LaserPower 50",
		"ScanSpeed 100000",
		"MoveStageX 10",
		"0\t0\t1",
		"write",
		"MoveStageX 15", // relative to where the first block left the stage
		"0\t0\t1",
		"write",
	}
	got := lines(&buf)
	if len(got) != len(want) {
		t.Fatalf("got %d lines %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
	coordsNear(t, d, 25, 0, 0, "script displacement")
}

func TestCompileRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structure.gwl")
	rec, err := Compile(path, units.Milliwatts(50), units.MicrometersPerSecond(100000), smallBlock(10))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if rec.File() != path {
		t.Errorf("File() = %q, want %q", rec.File(), path)
	}
	coordsNear(t, rec.Origin(), 0, 0, 0, "compiled origin")
	coordsNear(t, rec.Displacement(), 10, 0, 0, "compiled displacement")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading script: %v", err)
	}
	var buf bytes.Buffer
	if _, err := WriteScript(&buf, units.Milliwatts(50), units.MicrometersPerSecond(100000), smallBlock(10)); err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}
	if string(data) != buf.String() {
		t.Errorf("file content diverges from WriteScript output:\n%q\nvs\n%q", data, buf.String())
	}
}

func TestCompileOpenError(t *testing.T) {
	_, err := Compile(filepath.Join(t.TempDir(), "missing", "structure.gwl"),
		units.Milliwatts(50), units.MicrometersPerSecond(100000))
	if !errors.Is(err, errors.ErrEmitOpen) {
		t.Errorf("got %v, want EMIT_OPEN", err)
	}
}

func TestTranslateIsPure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structure.gwl")
	rec, err := Compile(path, units.Milliwatts(50), units.MicrometersPerSecond(100000), smallBlock(10))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading script: %v", err)
	}

	moved := rec.Translate(coord(100, 50, 0))

	coordsNear(t, moved.Origin(), 100, 50, 0, "translated origin")
	coordsNear(t, moved.Displacement(), 10, 0, 0, "translated displacement")
	if moved.File() != rec.File() {
		t.Errorf("translate changed the file reference: %q", moved.File())
	}
	coordsNear(t, rec.Origin(), 0, 0, 0, "original origin untouched")

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("re-reading script: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("translate touched the script file")
	}
}

func TestWithFileRebasesReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structure.gwl")
	rec, err := Compile(path, units.Milliwatts(50), units.MicrometersPerSecond(100000), smallBlock(10))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	rebased := rec.WithFile("structure.gwl")
	if rebased.File() != "structure.gwl" {
		t.Errorf("rebased file = %q", rebased.File())
	}
	if rec.File() != path {
		t.Errorf("original file changed: %q", rec.File())
	}
	coordsNear(t, rebased.Displacement(), 10, 0, 0, "rebased displacement")
}

func TestEmbeddingEquivalence(t *testing.T) {
	// Relocating a record shifts only the move directives of the
	// enclosing traversal; the include line and the referenced file's
	// body never change. Emitting the translated record at relative
	// origin r is byte-identical to emitting the original at r.
	rec := &CompiledScript{file: "a.gwl", displacement: coord(3, 0, 0)}
	d := coord(7, -2, 1)
	r := coord(1, 1, 1)

	var shifted, direct bytes.Buffer
	d1, err := rec.Translate(d).writeEmbedded(&shifted, r)
	if err != nil {
		t.Fatalf("writeEmbedded failed: %v", err)
	}
	d2, err := rec.writeEmbedded(&direct, r)
	if err != nil {
		t.Fatalf("writeEmbedded failed: %v", err)
	}
	if shifted.String() != direct.String() {
		t.Errorf("embedding output differs:\n%q\nvs\n%q", shifted.String(), direct.String())
	}
	coordsNear(t, d1, d2.X.Micrometers(), d2.Y.Micrometers(), d2.Z.Micrometers(), "embedded displacement")

	// In a traversal the translated record's natural relative origin is
	// d beyond the original's: only the moves differ, includes match.
	var jobOrig, jobMoved bytes.Buffer
	base := &CompiledScript{origin: coord(10, 0, 0), file: "a.gwl", displacement: coord(3, 0, 0)}
	if err := WriteJob(&jobOrig, units.MicrometersPerSecond(200), um(0), base); err != nil {
		t.Fatalf("WriteJob failed: %v", err)
	}
	if err := WriteJob(&jobMoved, units.MicrometersPerSecond(200), um(0), base.Translate(coord(5, 0, 0))); err != nil {
		t.Fatalf("WriteJob failed: %v", err)
	}
	origLines := lines(&jobOrig)
	movedLines := lines(&jobMoved)
	if len(origLines) != len(movedLines) {
		t.Fatalf("line counts differ: %v vs %v", origLines, movedLines)
	}
	for i := range origLines {
		if origLines[i] == movedLines[i] {
			continue
		}
		if !strings.HasPrefix(origLines[i], "MoveStage") && !strings.HasPrefix(origLines[i], "AddZDrivePosition") {
			t.Errorf("non-move line changed by translation: %q vs %q", origLines[i], movedLines[i])
		}
	}
	if origLines[2] != "MoveStageX 10" || movedLines[2] != "MoveStageX 15" {
		t.Errorf("moves not shifted as expected: %q vs %q", origLines[2], movedLines[2])
	}
}

func TestEmbeddedScriptInTraversal(t *testing.T) {
	// A compiled script behaves like any geometry node: consume the
	// relative origin, include, report move plus recorded displacement.
	rec := &CompiledScript{
		origin:       coord(10, 0, 0),
		file:         "part.gwl",
		displacement: coord(2, 0, 0),
	}
	var buf bytes.Buffer
	d, err := WriteScript(&buf, units.Milliwatts(20), units.MicrometersPerSecond(50000),
		rec, smallBlock(30))
	if err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}

	want := []string{
		"LaserPower 20",
		"ScanSpeed 50000",
		"MoveStageX 10",
		"include part.gwl",
		"MoveStageX 18", // 30 - (10 + 2)
		"0\t0\t1",
		"write",
	}
	got := lines(&buf)
	if len(got) != len(want) {
		t.Fatalf("got %d lines %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
	coordsNear(t, d, 30, 0, 0, "traversal displacement")
}

// failWriter errors after a fixed number of successful writes.
type failWriter struct {
	remaining int
}

func (f *failWriter) Write(p []byte) (int, error) {
	if f.remaining <= 0 {
		return 0, os.ErrClosed
	}
	f.remaining--
	return len(p), nil
}

func TestEmissionErrorAborts(t *testing.T) {
	// An I/O failure mid-traversal aborts immediately and propagates.
	_, err := WriteScript(&failWriter{remaining: 3}, units.Milliwatts(50),
		units.MicrometersPerSecond(100000), smallBlock(10), smallBlock(20))
	if err == nil {
		t.Fatal("expected write failure to propagate")
	}
}
