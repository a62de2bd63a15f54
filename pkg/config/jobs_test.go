package config

import (
	"math"
	"testing"

	"ahmes-go/pkg/errors"
)

const exampleJobFile = `
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
hatch_angle_step: 90
origin: 0 um, 0 um, 0 um

[script wall]
power: 40 mW
speed: 80000 um/s
width: 100 um
height: 2 um
depth: 20 um
hatch_spacing: 0.4 um
layer_height: 0.25 um
origin: 200 um, 0 um, 0 um
rotation: 45

[job main]
scripts: pillars, wall
stage_velocity: 200 um/s
interface_at: 0 um

[multijob]
stage_velocity: 200 um/s
placements:
	0 um, 0 um, main
	100 um, 50 um, main
`

func TestLoadJobs(t *testing.T) {
	cfg, err := LoadString(exampleJobFile)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	jf, err := LoadJobs(cfg)
	if err != nil {
		t.Fatalf("LoadJobs failed: %v", err)
	}

	if jf.OutputDir != "./out" {
		t.Errorf("OutputDir = %q, want ./out", jf.OutputDir)
	}

	if len(jf.Scripts) != 2 {
		t.Fatalf("got %d scripts, want 2", len(jf.Scripts))
	}
	pillars := jf.Scripts[0]
	if pillars.Name != "pillars" {
		t.Errorf("first script = %q, want pillars", pillars.Name)
	}
	if pillars.Power.Milliwatts() != 50 {
		t.Errorf("pillars power = %v", pillars.Power.Milliwatts())
	}
	if pillars.HatchAngleStep != 90 {
		t.Errorf("pillars hatch_angle_step = %v", pillars.HatchAngleStep)
	}
	wall := jf.Scripts[1]
	if wall.Rotation != 45 {
		t.Errorf("wall rotation = %v", wall.Rotation)
	}
	if math.Abs(wall.Origin.X.Micrometers()-200) > 1e-9 {
		t.Errorf("wall origin x = %v", wall.Origin.X.Micrometers())
	}

	if len(jf.Jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jf.Jobs))
	}
	job := jf.Jobs[0]
	if job.Name != "main" || len(job.Scripts) != 2 || job.Scripts[1] != "wall" {
		t.Errorf("job = %+v", job)
	}
	if job.StageVelocity.MicrometersPerSecond() != 200 {
		t.Errorf("job velocity = %v", job.StageVelocity.MicrometersPerSecond())
	}

	if jf.MultiJob == nil {
		t.Fatal("expected multijob")
	}
	if len(jf.MultiJob.Placements) != 2 {
		t.Fatalf("got %d placements, want 2", len(jf.MultiJob.Placements))
	}
	p := jf.MultiJob.Placements[1]
	if p.X.Micrometers() != 100 || p.Y.Micrometers() != 50 || p.Job != "main" {
		t.Errorf("placement = %+v", p)
	}
}

func TestLoadJobsNoScripts(t *testing.T) {
	cfg, err := LoadString("[output]\ndirectory: .\n")
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if _, err := LoadJobs(cfg); !errors.Is(err, errors.ErrConfigSection) {
		t.Errorf("got %v, want CONFIG_SECTION", err)
	}
}

func TestLoadJobsUnknownScriptRef(t *testing.T) {
	data := `
[script a]
power: 50 mW
speed: 100000 um/s
width: 10 um
height: 10 um
depth: 1 um
hatch_spacing: 0.5 um
layer_height: 0.5 um

[job broken]
scripts: a, ghost
stage_velocity: 200 um/s
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if _, err := LoadJobs(cfg); !errors.Is(err, errors.ErrConfigValidation) {
		t.Errorf("got %v, want CONFIG_VALIDATION", err)
	}
}

func TestLoadJobsUnknownJobPlacement(t *testing.T) {
	data := `
[script a]
power: 50 mW
speed: 100000 um/s
width: 10 um
height: 10 um
depth: 1 um
hatch_spacing: 0.5 um
layer_height: 0.5 um

[multijob]
stage_velocity: 200 um/s
placements: 0 um, 0 um, ghost
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if _, err := LoadJobs(cfg); !errors.Is(err, errors.ErrConfigValidation) {
		t.Errorf("got %v, want CONFIG_VALIDATION", err)
	}
}

func TestLoadJobsWrongDimension(t *testing.T) {
	data := `
[script a]
power: 50 um
speed: 100000 um/s
width: 10 um
height: 10 um
depth: 1 um
hatch_spacing: 0.5 um
layer_height: 0.5 um
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	if _, err := LoadJobs(cfg); !errors.Is(err, errors.ErrConfigType) {
		t.Errorf("got %v, want CONFIG_TYPE", err)
	}
}
