// Package config provides parsing of write-job definition files with
// access tracking, in the same ini dialect the instrument lab tooling
// has always used: [section name] headers, "option: value" lines,
// indented continuation lines and [include path] directives.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Config provides access to a parsed job definition file.
type Config struct {
	sections map[string]*Section
	order    []string // Maintains section order
}

// New creates a new empty Config.
func New() *Config {
	return &Config{
		sections: make(map[string]*Section),
	}
}

// Load reads a job definition file and returns a Config.
// Supports [include path] directives for including other files.
func Load(path string) (*Config, error) {
	c := New()
	visited := make(map[string]bool)
	if err := c.parseFile(path, visited); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadString parses a job definition from a string.
func LoadString(data string) (*Config, error) {
	c := New()
	if err := c.parse(strings.NewReader(data), "", nil); err != nil {
		return nil, err
	}
	return c, nil
}

// parseFile parses a file and handles include directives.
func (c *Config) parseFile(path string, visited map[string]bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: invalid path %s: %w", path, err)
	}

	// Check for recursive includes
	if visited[abs] {
		return fmt.Errorf("config: recursive include: %s", path)
	}
	visited[abs] = true
	defer func() { visited[abs] = false }()

	f, err := os.Open(abs)
	if err != nil {
		return fmt.Errorf("config: unable to open %s: %w", path, err)
	}
	defer f.Close()

	return c.parse(f, filepath.Dir(abs), visited)
}

// parse consumes one stream of config lines. dir is the directory for
// resolving relative includes; empty disables them.
func (c *Config) parse(r io.Reader, dir string, visited map[string]bool) error {
	var currentSection string
	var currentOptions map[string]string
	var lastOption string

	flush := func() {
		if currentSection != "" {
			c.addSection(currentSection, currentOptions)
		}
		currentSection = ""
		currentOptions = nil
		lastOption = ""
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		// Skip empty lines
		if line == "" {
			continue
		}

		// Strip comments
		if idx := strings.IndexAny(line, "#;"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
			if line == "" {
				continue
			}
		}

		// Indented continuation of the previous option value
		if (raw[0] == ' ' || raw[0] == '\t') && lastOption != "" && currentOptions != nil {
			currentOptions[lastOption] += "\n" + line
			continue
		}

		// Section header
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.TrimSpace(line[1 : len(line)-1])

			// Include directive
			if strings.HasPrefix(name, "include ") {
				if visited == nil {
					return fmt.Errorf("config: line %d: include not supported here", lineNum)
				}
				target := strings.TrimSpace(name[len("include "):])
				if !filepath.IsAbs(target) {
					target = filepath.Join(dir, target)
				}
				if err := c.parseFile(target, visited); err != nil {
					return err
				}
				continue
			}

			flush()
			currentSection = name
			currentOptions = make(map[string]string)
			continue
		}

		// Option line: "name: value" or "name = value"
		sep := strings.IndexAny(line, ":=")
		if sep < 0 {
			return fmt.Errorf("config: line %d: malformed line %q", lineNum, line)
		}
		if currentSection == "" {
			return fmt.Errorf("config: line %d: option outside of any section", lineNum)
		}
		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		currentOptions[strings.ToLower(key)] = value
		lastOption = strings.ToLower(key)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: read: %w", err)
	}
	flush()
	return nil
}

// addSection registers a parsed section, merging options into an
// existing section of the same name (later options win).
func (c *Config) addSection(name string, options map[string]string) {
	if existing, ok := c.sections[name]; ok {
		existing.merge(options)
		return
	}
	c.sections[name] = newSection(name, options)
	c.order = append(c.order, name)
}

// HasSection checks if a section exists.
func (c *Config) HasSection(name string) bool {
	_, ok := c.sections[name]
	return ok
}

// GetSection returns a section by name.
func (c *Config) GetSection(name string) (*Section, error) {
	s, ok := c.sections[name]
	if !ok {
		return nil, ErrMissingSection(name)
	}
	return s, nil
}

// SectionNames returns all section names in file order.
func (c *Config) SectionNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// SectionsWithPrefix returns the sections whose name starts with the
// given prefix (e.g. "script "), in file order.
func (c *Config) SectionsWithPrefix(prefix string) []*Section {
	var out []*Section
	for _, name := range c.order {
		if strings.HasPrefix(name, prefix) {
			out = append(out, c.sections[name])
		}
	}
	return out
}
