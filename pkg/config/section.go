package config

import (
	"strconv"
	"strings"
	"sync"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/geometry"
	"ahmes-go/pkg/units"
)

// ErrMissingSection returns an error for a missing section.
func ErrMissingSection(section string) error {
	return errors.ConfigSectionError(section)
}

// Section provides access to a config section with access tracking.
type Section struct {
	name    string
	options map[string]string

	// Access tracking
	mu       sync.RWMutex
	accessed map[string]struct{}
}

// newSection creates a new Section.
func newSection(name string, options map[string]string) *Section {
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[strings.ToLower(k)] = v
	}
	return &Section{
		name:     name,
		options:  opts,
		accessed: make(map[string]struct{}),
	}
}

// merge folds additional options into the section, later values winning.
func (s *Section) merge(options map[string]string) {
	for k, v := range options {
		s.options[strings.ToLower(k)] = v
	}
}

// GetName returns the section name.
func (s *Section) GetName() string {
	return s.name
}

// markAccessed records that an option was accessed.
func (s *Section) markAccessed(option string) {
	s.mu.Lock()
	s.accessed[strings.ToLower(option)] = struct{}{}
	s.mu.Unlock()
}

// GetUnusedOptions returns options never accessed, for typo warnings.
func (s *Section) GetUnusedOptions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []string
	for opt := range s.options {
		if _, ok := s.accessed[opt]; !ok {
			result = append(result, opt)
		}
	}
	return result
}

// HasOption checks if an option exists in this section.
func (s *Section) HasOption(option string) bool {
	_, ok := s.options[strings.ToLower(option)]
	return ok
}

// Get returns a string option value.
// If a fallback is provided and the option doesn't exist, returns it.
func (s *Section) Get(option string, fallback ...string) (string, error) {
	key := strings.ToLower(option)
	if v, ok := s.options[key]; ok {
		s.markAccessed(option)
		return v, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return "", errors.ConfigOptionError(s.name, option)
}

// GetInt returns an integer option value.
func (s *Section) GetInt(option string, fallback ...int) (int, error) {
	key := strings.ToLower(option)
	if v, ok := s.options[key]; ok {
		s.markAccessed(option)
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errors.ConfigTypeError(s.name, option, v, "integer", err)
		}
		return i, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return 0, errors.ConfigOptionError(s.name, option)
}

// GetFloat returns a float option value.
func (s *Section) GetFloat(option string, fallback ...float64) (float64, error) {
	key := strings.ToLower(option)
	if v, ok := s.options[key]; ok {
		s.markAccessed(option)
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errors.ConfigTypeError(s.name, option, v, "float", err)
		}
		return f, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return 0, errors.ConfigOptionError(s.name, option)
}

// GetBool returns a boolean option value.
func (s *Section) GetBool(option string, fallback ...bool) (bool, error) {
	key := strings.ToLower(option)
	if v, ok := s.options[key]; ok {
		s.markAccessed(option)
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return false, errors.ConfigTypeError(s.name, option, v, "boolean", nil)
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return false, errors.ConfigOptionError(s.name, option)
}

// GetStringList returns a comma-separated list option.
func (s *Section) GetStringList(option string) ([]string, error) {
	v, err := s.Get(option)
	if err != nil {
		return nil, err
	}
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '\n' })
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// GetLength returns a length quantity option such as "10 um".
func (s *Section) GetLength(option string, fallback ...units.Length) (units.Length, error) {
	key := strings.ToLower(option)
	if v, ok := s.options[key]; ok {
		s.markAccessed(option)
		l, err := units.ParseLength(v)
		if err != nil {
			return units.Length{}, errors.ConfigTypeError(s.name, option, v, "length", err)
		}
		return l, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return units.Length{}, errors.ConfigOptionError(s.name, option)
}

// GetVelocity returns a velocity quantity option such as "200 um/s".
func (s *Section) GetVelocity(option string, fallback ...units.Velocity) (units.Velocity, error) {
	key := strings.ToLower(option)
	if v, ok := s.options[key]; ok {
		s.markAccessed(option)
		vel, err := units.ParseVelocity(v)
		if err != nil {
			return units.Velocity{}, errors.ConfigTypeError(s.name, option, v, "velocity", err)
		}
		return vel, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return units.Velocity{}, errors.ConfigOptionError(s.name, option)
}

// GetPower returns a power quantity option such as "50 mW".
func (s *Section) GetPower(option string, fallback ...units.Power) (units.Power, error) {
	key := strings.ToLower(option)
	if v, ok := s.options[key]; ok {
		s.markAccessed(option)
		p, err := units.ParsePower(v)
		if err != nil {
			return units.Power{}, errors.ConfigTypeError(s.name, option, v, "power", err)
		}
		return p, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return units.Power{}, errors.ConfigOptionError(s.name, option)
}

// GetCoordinate returns a comma-separated length triple option such as
// "0 um, 10 um, 5 um". Component count goes through the geometry
// layer's structural validation.
func (s *Section) GetCoordinate(option string, fallback ...geometry.Coordinate) (geometry.Coordinate, error) {
	key := strings.ToLower(option)
	if v, ok := s.options[key]; ok {
		s.markAccessed(option)
		parts := strings.Split(v, ",")
		components := make([]units.Length, 0, len(parts))
		for _, p := range parts {
			l, err := units.ParseLength(strings.TrimSpace(p))
			if err != nil {
				return geometry.Coordinate{}, errors.ConfigTypeError(s.name, option, v, "coordinate", err)
			}
			components = append(components, l)
		}
		c, err := geometry.FromSlice(components)
		if err != nil {
			return geometry.Coordinate{}, errors.ConfigTypeError(s.name, option, v, "coordinate", err)
		}
		return c, nil
	}
	if len(fallback) > 0 {
		s.markAccessed(option)
		return fallback[0], nil
	}
	return geometry.Coordinate{}, errors.ConfigOptionError(s.name, option)
}
