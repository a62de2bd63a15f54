package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"ahmes-go/pkg/errors"
)

func TestLoadString(t *testing.T) {
	data := `
[output]
directory: ./out

[script pillars]
power: 50 mW
speed: 100000 um/s
width: 50 um
height: 50 um
depth: 10 um
hatch_spacing: 0.5 um
layer_height: 0.3 um
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	if !cfg.HasSection("output") {
		t.Error("expected [output] section to exist")
	}
	if !cfg.HasSection("script pillars") {
		t.Error("expected [script pillars] section to exist")
	}
	if cfg.HasSection("nonexistent") {
		t.Error("expected [nonexistent] section to not exist")
	}

	s, err := cfg.GetSection("script pillars")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if s.GetName() != "script pillars" {
		t.Errorf("expected name 'script pillars', got '%s'", s.GetName())
	}

	p, err := s.GetPower("power")
	if err != nil {
		t.Fatalf("GetPower failed: %v", err)
	}
	if p.Milliwatts() != 50 {
		t.Errorf("power = %v mW, want 50", p.Milliwatts())
	}

	v, err := s.GetVelocity("speed")
	if err != nil {
		t.Fatalf("GetVelocity failed: %v", err)
	}
	if v.MicrometersPerSecond() != 100000 {
		t.Errorf("speed = %v um/s, want 100000", v.MicrometersPerSecond())
	}

	w, err := s.GetLength("width")
	if err != nil {
		t.Fatalf("GetLength failed: %v", err)
	}
	if w.Micrometers() != 50 {
		t.Errorf("width = %v um, want 50", w.Micrometers())
	}
}

func TestSectionAccessors(t *testing.T) {
	data := `
[test]
string_val: hello
int_val: 42
float_val: 2.5
bool_val: true
list_val: a, b, c
origin: 1 um, 2 um, 3 um
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	s, err := cfg.GetSection("test")
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}

	if v, err := s.Get("string_val"); err != nil || v != "hello" {
		t.Errorf("Get = %q, %v", v, err)
	}
	if v, err := s.GetInt("int_val"); err != nil || v != 42 {
		t.Errorf("GetInt = %d, %v", v, err)
	}
	if v, err := s.GetFloat("float_val"); err != nil || v != 2.5 {
		t.Errorf("GetFloat = %v, %v", v, err)
	}
	if v, err := s.GetBool("bool_val"); err != nil || !v {
		t.Errorf("GetBool = %v, %v", v, err)
	}
	if v, err := s.GetStringList("list_val"); err != nil || len(v) != 3 || v[1] != "b" {
		t.Errorf("GetStringList = %v, %v", v, err)
	}

	c, err := s.GetCoordinate("origin")
	if err != nil {
		t.Fatalf("GetCoordinate failed: %v", err)
	}
	if math.Abs(c.Y.Micrometers()-2) > 1e-9 {
		t.Errorf("origin y = %v, want 2", c.Y.Micrometers())
	}

	// Fallbacks for absent options.
	if v, err := s.Get("missing", "fallback"); err != nil || v != "fallback" {
		t.Errorf("Get with fallback = %q, %v", v, err)
	}
	if v, err := s.GetInt("missing", 7); err != nil || v != 7 {
		t.Errorf("GetInt with fallback = %d, %v", v, err)
	}

	// Absent options without fallbacks are errors.
	if _, err := s.Get("missing"); !errors.Is(err, errors.ErrConfigOption) {
		t.Errorf("missing option: got %v, want CONFIG_OPTION", err)
	}
}

func TestAccessorTypeErrors(t *testing.T) {
	data := `
[test]
not_int: hello
bad_length: 10 mW
short_coord: 1 um, 2 um
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	s, _ := cfg.GetSection("test")

	if _, err := s.GetInt("not_int"); !errors.Is(err, errors.ErrConfigType) {
		t.Errorf("bad int: got %v, want CONFIG_TYPE", err)
	}
	// A wrong-dimension quantity surfaces as a config type error
	// wrapping the unit mismatch.
	if _, err := s.GetLength("bad_length"); !errors.Is(err, errors.ErrConfigType) {
		t.Errorf("bad length: got %v, want CONFIG_TYPE", err)
	}
	if _, err := s.GetCoordinate("short_coord"); !errors.Is(err, errors.ErrConfigType) {
		t.Errorf("2-component coordinate: got %v, want CONFIG_TYPE", err)
	}
}

func TestContinuationLines(t *testing.T) {
	data := "[multijob]\nstage_velocity: 200 um/s\nplacements:\n\t0 um, 0 um, main\n\t100 um, 50 um, main\n"
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	s, _ := cfg.GetSection("multijob")
	v, err := s.Get("placements")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "\n0 um, 0 um, main\n100 um, 50 um, main" {
		t.Errorf("continuation join = %q", v)
	}
}

func TestComments(t *testing.T) {
	data := `
# leading comment
[test]
a: 1  # trailing comment
; another comment
b: 2
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	s, _ := cfg.GetSection("test")
	if v, _ := s.GetInt("a"); v != 1 {
		t.Errorf("a = %d, want 1", v)
	}
	if v, _ := s.GetInt("b"); v != 2 {
		t.Errorf("b = %d, want 2", v)
	}
}

func TestInclude(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.cfg")
	extra := filepath.Join(dir, "extra.cfg")

	if err := os.WriteFile(extra, []byte("[extra]\nval: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(base, []byte("[include extra.cfg]\n[main]\nval: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(base)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.HasSection("extra") || !cfg.HasSection("main") {
		t.Errorf("sections = %v", cfg.SectionNames())
	}
}

func TestRecursiveIncludeRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loop.cfg")
	if err := os.WriteFile(path, []byte("[include loop.cfg]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected recursive include to fail")
	}
}

func TestUnusedOptions(t *testing.T) {
	cfg, err := LoadString("[test]\nused: 1\ntypod_option: 2\n")
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	s, _ := cfg.GetSection("test")
	if _, err := s.GetInt("used"); err != nil {
		t.Fatal(err)
	}
	unused := s.GetUnusedOptions()
	if len(unused) != 1 || unused[0] != "typod_option" {
		t.Errorf("unused = %v, want [typod_option]", unused)
	}
}
