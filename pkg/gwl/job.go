package gwl

import (
	"bufio"
	"io"
	"os"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/geometry"
	"ahmes-go/pkg/units"
)

// Job references a script that chains several compiled scripts behind
// shared stage-motion setup. Jobs are executed as found; no
// displacement is retained for re-embedding.
type Job struct {
	file string
}

// File returns the job's script file reference.
func (j *Job) File() string { return j.file }

// WithFile returns a copy of the job referencing file instead of the
// sequenced path, for inclusion from a sibling script.
func (j *Job) WithFile(file string) *Job {
	return &Job{file: file}
}

// WriteJob writes the job body: stage velocity and interface-finding
// setup, then every record included at its relative origin with the
// same running-position tracking used for geometry nodes.
func WriteJob(w io.Writer, velocity units.Velocity, interfaceAt units.Length, scripts ...*CompiledScript) error {
	if err := writeDirective(w, "StageVelocity", velocity.MicrometersPerSecond()); err != nil {
		return err
	}
	if err := writeDirective(w, "FindInterfaceAt", interfaceAt.Micrometers()); err != nil {
		return err
	}

	var current geometry.Coordinate
	for _, s := range scripts {
		rel := s.Origin().Sub(current)
		d, err := s.writeEmbedded(w, rel)
		if err != nil {
			return err
		}
		current = current.Add(d)
	}
	return nil
}

// SequenceJob writes a job script chaining the given records to the
// file at path. The file handle is released on every exit path; a
// failed write leaves the partial file for the caller to discard.
func SequenceJob(path string, velocity units.Velocity, interfaceAt units.Length, scripts ...*CompiledScript) (*Job, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.EmitOpenError(path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WriteJob(bw, velocity, interfaceAt, scripts...); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, errors.EmitIOError(path, err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.EmitIOError(path, err)
	}

	return &Job{file: path}, nil
}
