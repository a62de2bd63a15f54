package config

import (
	"strings"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/geometry"
	"ahmes-go/pkg/units"
)

// ScriptSpec describes one structure to compile into a script file:
// the write parameters plus the box to slice and hatch.
type ScriptSpec struct {
	Name  string
	Power units.Power
	Speed units.Velocity

	Width        units.Length
	Height       units.Length
	Depth        units.Length
	HatchSpacing units.Length
	LayerHeight  units.Length

	// HatchAngleStep advances the hatch direction per layer, degrees.
	HatchAngleStep float64

	Origin   geometry.Coordinate
	Rotation float64
}

// JobSpec chains compiled scripts behind shared stage setup.
type JobSpec struct {
	Name          string
	Scripts       []string
	StageVelocity units.Velocity
	InterfaceAt   units.Length
}

// PlacementSpec positions a job at an absolute global location.
type PlacementSpec struct {
	X, Y units.Length
	Job  string
}

// MultiJobSpec places jobs at absolute global locations.
type MultiJobSpec struct {
	StageVelocity units.Velocity
	Placements    []PlacementSpec
}

// JobFile is the fully resolved job definition.
type JobFile struct {
	OutputDir string
	Scripts   []ScriptSpec
	Jobs      []JobSpec
	MultiJob  *MultiJobSpec
}

const (
	scriptPrefix = "script "
	jobPrefix    = "job "
)

// LoadJobs resolves a parsed Config into the typed job definition.
func LoadJobs(c *Config) (*JobFile, error) {
	jf := &JobFile{OutputDir: "."}

	if c.HasSection("output") {
		out, err := c.GetSection("output")
		if err != nil {
			return nil, err
		}
		dir, err := out.Get("directory", ".")
		if err != nil {
			return nil, err
		}
		jf.OutputDir = dir
	}

	for _, s := range c.SectionsWithPrefix(scriptPrefix) {
		spec, err := loadScript(s)
		if err != nil {
			return nil, err
		}
		jf.Scripts = append(jf.Scripts, spec)
	}
	if len(jf.Scripts) == 0 {
		return nil, errors.ConfigSectionError("script")
	}

	known := make(map[string]bool, len(jf.Scripts))
	for _, s := range jf.Scripts {
		known[s.Name] = true
	}

	jobNames := make(map[string]bool)
	for _, s := range c.SectionsWithPrefix(jobPrefix) {
		spec, err := loadJob(s, known)
		if err != nil {
			return nil, err
		}
		jf.Jobs = append(jf.Jobs, spec)
		jobNames[spec.Name] = true
	}

	if c.HasSection("multijob") {
		s, err := c.GetSection("multijob")
		if err != nil {
			return nil, err
		}
		mj, err := loadMultiJob(s, jobNames)
		if err != nil {
			return nil, err
		}
		jf.MultiJob = mj
	}

	return jf, nil
}

func loadScript(s *Section) (ScriptSpec, error) {
	name := strings.TrimSpace(strings.TrimPrefix(s.GetName(), scriptPrefix))
	if name == "" {
		return ScriptSpec{}, errors.ConfigValidationError(s.GetName(), "", "script section needs a name")
	}
	spec := ScriptSpec{Name: name}

	var err error
	if spec.Power, err = s.GetPower("power"); err != nil {
		return ScriptSpec{}, err
	}
	if spec.Speed, err = s.GetVelocity("speed"); err != nil {
		return ScriptSpec{}, err
	}
	if spec.Width, err = s.GetLength("width"); err != nil {
		return ScriptSpec{}, err
	}
	if spec.Height, err = s.GetLength("height"); err != nil {
		return ScriptSpec{}, err
	}
	if spec.Depth, err = s.GetLength("depth"); err != nil {
		return ScriptSpec{}, err
	}
	if spec.HatchSpacing, err = s.GetLength("hatch_spacing"); err != nil {
		return ScriptSpec{}, err
	}
	if spec.LayerHeight, err = s.GetLength("layer_height"); err != nil {
		return ScriptSpec{}, err
	}
	if spec.HatchAngleStep, err = s.GetFloat("hatch_angle_step", 90); err != nil {
		return ScriptSpec{}, err
	}
	if spec.Origin, err = s.GetCoordinate("origin", geometry.Coordinate{}); err != nil {
		return ScriptSpec{}, err
	}
	if spec.Rotation, err = s.GetFloat("rotation", 0); err != nil {
		return ScriptSpec{}, err
	}
	return spec, nil
}

func loadJob(s *Section, knownScripts map[string]bool) (JobSpec, error) {
	name := strings.TrimSpace(strings.TrimPrefix(s.GetName(), jobPrefix))
	if name == "" {
		return JobSpec{}, errors.ConfigValidationError(s.GetName(), "", "job section needs a name")
	}
	spec := JobSpec{Name: name}

	var err error
	if spec.Scripts, err = s.GetStringList("scripts"); err != nil {
		return JobSpec{}, err
	}
	for _, ref := range spec.Scripts {
		if !knownScripts[ref] {
			return JobSpec{}, errors.ConfigValidationError(s.GetName(), "scripts",
				"unknown script '"+ref+"'")
		}
	}
	if spec.StageVelocity, err = s.GetVelocity("stage_velocity"); err != nil {
		return JobSpec{}, err
	}
	if spec.InterfaceAt, err = s.GetLength("interface_at", units.Micrometers(0)); err != nil {
		return JobSpec{}, err
	}
	return spec, nil
}

func loadMultiJob(s *Section, knownJobs map[string]bool) (*MultiJobSpec, error) {
	mj := &MultiJobSpec{}

	var err error
	if mj.StageVelocity, err = s.GetVelocity("stage_velocity"); err != nil {
		return nil, err
	}

	raw, err := s.Get("placements")
	if err != nil {
		return nil, err
	}
	// One placement per line or semicolon: "x, y, job".
	entries := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ';' })
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		parts := strings.Split(e, ",")
		if len(parts) != 3 {
			return nil, errors.ConfigValidationError(s.GetName(), "placements",
				"placement '"+e+"' must be 'x, y, job'")
		}
		x, err := units.ParseLength(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, errors.ConfigTypeError(s.GetName(), "placements", e, "length", err)
		}
		y, err := units.ParseLength(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, errors.ConfigTypeError(s.GetName(), "placements", e, "length", err)
		}
		job := strings.TrimSpace(parts[2])
		if !knownJobs[job] {
			return nil, errors.ConfigValidationError(s.GetName(), "placements",
				"unknown job '"+job+"'")
		}
		mj.Placements = append(mj.Placements, PlacementSpec{X: x, Y: y, Job: job})
	}
	if len(mj.Placements) == 0 {
		return nil, errors.ConfigValidationError(s.GetName(), "placements", "no placements given")
	}
	return mj, nil
}
