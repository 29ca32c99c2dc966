package export

import (
	"context"

	"github.com/google/uuid"

	"github.com/matzehuels/contactsheet/pkg/document"
	"github.com/matzehuels/contactsheet/pkg/errors"
)

// Job is one accepted export.
type Job struct {
	ID     uuid.UUID
	Path   string
	Format document.Format

	done   chan struct{}
	cancel context.CancelFunc
	result *Result
	err    error
}

// Done is closed when the job has finished, after its final event.
func (j *Job) Done() <-chan struct{} { return j.done }

// Cancel aborts the job. The artifact is not written unless the rename
// had already happened.
func (j *Job) Cancel() { j.cancel() }

// Result returns the outcome of a finished job. It must only be called
// after Done is closed.
func (j *Job) Result() (*Result, error) { return j.result, j.err }

// Wait blocks until the job finishes or ctx is done. Giving up on the wait
// does not cancel the job.
func (j *Job) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-j.done:
		return j.result, j.err
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrCodeCancelled, ctx.Err(), "stopped waiting for export %s", j.ID)
	}
}
