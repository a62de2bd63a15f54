package gwl

import (
	"bufio"
	"io"
	"os"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/units"
)

// Placement positions a job at an absolute global 2D location.
type Placement struct {
	X, Y units.Length
	Job  *Job
}

// WriteMultiJob writes the multi-job body: one stage velocity setup,
// then each job included after an absolute jump to its global location.
// Global jumps are independent of prior stage state, so no relative
// tracking is needed here.
func WriteMultiJob(w io.Writer, velocity units.Velocity, placements ...Placement) error {
	if err := writeDirective(w, "StageVelocity", velocity.MicrometersPerSecond()); err != nil {
		return err
	}
	for _, p := range placements {
		if err := writeDirective(w, "GlobalGotoX", p.X.Micrometers()); err != nil {
			return err
		}
		if err := writeDirective(w, "GlobalGotoY", p.Y.Micrometers()); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "include "+p.Job.File()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// SequenceMultiJob writes a multi-job script placing each job at its
// absolute global location to the file at path.
func SequenceMultiJob(path string, velocity units.Velocity, placements ...Placement) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.EmitOpenError(path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WriteMultiJob(bw, velocity, placements...); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errors.EmitIOError(path, err)
	}
	if err := f.Close(); err != nil {
		return errors.EmitIOError(path, err)
	}
	return nil
}
