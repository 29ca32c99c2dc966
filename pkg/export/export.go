// Package export runs the contact sheet export pipeline.
//
// An export takes a frozen [sheet.Snapshot] through four stages:
//
//  1. Geometry: page size for the snapshot's orientation and the 3×3 grid
//  2. Render: decode, rotate, fit and composite every slot
//  3. Encode: wrap the raster into a single-page document
//  4. Save: write the document atomically to the output path
//
// At most one export runs per [Exporter]. A second request while a job is in
// flight is rejected with EXPORT_IN_PROGRESS rather than queued. Every
// accepted job emits exactly one Started event followed by exactly one
// Succeeded or Failed event. Requests rejected before a job exists (empty
// sheet, busy exporter, invalid options) return an error and emit nothing.
//
// # Usage
//
//	exp := export.NewExporter(logger)
//	res, err := exp.Export(ctx, s.Snapshot(), export.Options{Output: "out.pdf"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println("wrote", res.Path)
package export

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/contactsheet/pkg/document"
	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/grid"
	"github.com/matzehuels/contactsheet/pkg/observability"
	"github.com/matzehuels/contactsheet/pkg/page"
	"github.com/matzehuels/contactsheet/pkg/raster"
	"github.com/matzehuels/contactsheet/pkg/sheet"
)

// EventKind identifies a job status event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventSucceeded
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports the status of an export job.
type Event struct {
	Kind  EventKind
	JobID uuid.UUID
	Path  string // destination artifact

	// Set on EventSucceeded.
	Result *Result

	// Set on EventFailed.
	Code errors.Code
	Err  error
}

// Result describes a finished export.
type Result struct {
	JobID  uuid.UUID
	Path   string
	Format document.Format
	Spec   page.Spec
	Bytes  int
	Stats  Stats
}

// Stats contains export timings.
type Stats struct {
	Slots      int
	RenderTime time.Duration
	EncodeTime time.Duration
	SaveTime   time.Duration
	Total      time.Duration
}

// Exporter runs export jobs one at a time. It is safe for concurrent use.
type Exporter struct {
	Logger *log.Logger

	busy atomic.Bool
}

// NewExporter creates an exporter. A nil logger uses log.Default().
func NewExporter(logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{Logger: logger}
}

// Busy reports whether a job is in flight.
func (e *Exporter) Busy() bool { return e.busy.Load() }

// Start claims the exporter and runs the pipeline for snap in a new
// goroutine. snap must already be a frozen copy of the sheet; later
// mutations of the sheet do not affect the job. The job is cancelled when
// ctx is.
func (e *Exporter) Start(ctx context.Context, snap sheet.Snapshot, opts Options) (*Job, error) {
	if snap.Empty() {
		return nil, errors.New(errors.ErrCodeEmptyModel, "please add some images first")
	}
	if snap.Len() > sheet.Capacity {
		return nil, errors.New(errors.ErrCodeCapacityExceeded,
			"a sheet holds at most %d images, got %d", sheet.Capacity, snap.Len())
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	spec, err := page.Compute(snap.Orientation)
	if err != nil {
		return nil, err
	}
	margin, gutter := opts.ResolvedMargins()
	layout := grid.Compute(spec, margin, grid.WithGutter(gutter))
	if layout.Side == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"margin %d and gutter %d leave no room for images on a %s page", margin, gutter, spec.Orientation)
	}

	if !e.busy.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeExportInProgress, "an export is already running")
	}

	jctx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:     uuid.New(),
		Path:   opts.ResolvedOutput(),
		Format: opts.format,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	e.Logger.Info("export started",
		"job", job.ID,
		"slots", snap.Len(),
		"orientation", snap.Orientation,
		"format", job.Format,
		"output", job.Path)
	emit(opts.OnEvent, Event{Kind: EventStarted, JobID: job.ID, Path: job.Path})

	go e.run(jctx, job, snap, layout, opts)
	return job, nil
}

// Export runs one job to completion. Cancelling ctx aborts the job; Export
// still waits for it to unwind so no partial artifact is left behind.
func (e *Exporter) Export(ctx context.Context, snap sheet.Snapshot, opts Options) (*Result, error) {
	job, err := e.Start(ctx, snap, opts)
	if err != nil {
		return nil, err
	}
	<-job.Done()
	return job.Result()
}

// run executes the pipeline and publishes its outcome. The exporter is
// released before the final event so an event handler may start a new job.
func (e *Exporter) run(ctx context.Context, job *Job, snap sheet.Snapshot, layout grid.Layout, opts Options) {
	defer job.cancel()

	hooks := observability.Export()
	id := job.ID.String()
	start := time.Now()
	hooks.OnExportStart(ctx, id, snap.Len(), snap.Orientation.String())

	res, err := e.pipeline(ctx, job, snap, layout, opts)
	if res != nil {
		res.Stats.Total = time.Since(start)
	}
	hooks.OnExportComplete(ctx, id, time.Since(start), err)

	job.result, job.err = res, err
	e.busy.Store(false)

	if err != nil {
		e.Logger.Error("export failed",
			"job", job.ID,
			"code", errors.GetCode(err),
			"err", err)
		emit(opts.OnEvent, Event{
			Kind:  EventFailed,
			JobID: job.ID,
			Path:  job.Path,
			Code:  errors.GetCode(err),
			Err:   err,
		})
	} else {
		e.Logger.Info("exported sheet",
			"job", job.ID,
			"path", res.Path,
			"bytes", res.Bytes,
			"duration", res.Stats.Total)
		emit(opts.OnEvent, Event{Kind: EventSucceeded, JobID: job.ID, Path: res.Path, Result: res})
	}
	close(job.done)
}

func (e *Exporter) pipeline(ctx context.Context, job *Job, snap sheet.Snapshot, layout grid.Layout, opts Options) (*Result, error) {
	hooks := observability.Export()
	id := job.ID.String()
	res := &Result{
		JobID:  job.ID,
		Path:   job.Path,
		Format: job.Format,
		Spec:   layout.Spec,
		Stats:  Stats{Slots: snap.Len()},
	}

	// Stage 1: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, id, snap.Len())
	buf, err := raster.Render(ctx, snap, layout,
		raster.WithBackground(opts.background),
		raster.WithFilter(opts.filter),
		raster.WithConcurrency(opts.Concurrency))
	res.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, id, res.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	e.Logger.Debug("rendered sheet",
		"job", job.ID,
		"size", layout.Spec.Bounds().Size(),
		"cell", layout.Side,
		"duration", res.Stats.RenderTime)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCancelled, err, "export cancelled")
	}

	// Stage 2: Encode
	encodeStart := time.Now()
	hooks.OnEncodeStart(ctx, id, string(job.Format))
	doc, err := document.Encode(buf, layout.Spec,
		document.WithFormat(job.Format),
		document.WithJPEGQuality(opts.JPEGQuality),
		document.WithTitle(opts.Title),
		document.WithCreationDate(time.Now()))
	res.Stats.EncodeTime = time.Since(encodeStart)
	size := 0
	if doc != nil {
		size = doc.Size()
	}
	hooks.OnEncodeComplete(ctx, id, string(job.Format), size, res.Stats.EncodeTime, err)
	if err != nil {
		return nil, err
	}
	res.Bytes = size
	e.Logger.Debug("encoded document",
		"job", job.ID,
		"format", job.Format,
		"bytes", size,
		"duration", res.Stats.EncodeTime)

	// Stage 3: Save
	saveStart := time.Now()
	hooks.OnSaveStart(ctx, id, job.Path)
	err = document.Save(ctx, doc, job.Path)
	res.Stats.SaveTime = time.Since(saveStart)
	hooks.OnSaveComplete(ctx, id, job.Path, res.Stats.SaveTime, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func emit(fn func(Event), ev Event) {
	if fn != nil {
		fn(ev)
	}
}
