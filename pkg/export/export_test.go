package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/grid"
	"github.com/matzehuels/contactsheet/pkg/observability"
	"github.com/matzehuels/contactsheet/pkg/page"
	"github.com/matzehuels/contactsheet/pkg/sheet"
)

var red = color.NRGBA{R: 255, A: 255}

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func fullSheet(t *testing.T, n int) *sheet.Sheet {
	t.Helper()
	s := sheet.New()
	for i := 0; i < n; i++ {
		c := color.NRGBA{R: uint8(20 * i), G: 100, B: 200, A: 255}
		if err := s.Add(sheet.NewSource("img.png", encodePNG(t, 40, 30, c))); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func quietExporter() *Exporter {
	return NewExporter(log.New(&bytes.Buffer{}))
}

// gateHooks blocks the render stage until release is closed.
type gateHooks struct {
	observability.NoopExportHooks
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gateHooks {
	return &gateHooks{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gateHooks) OnRenderStart(context.Context, string, int) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventKind
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func assertNoFile(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir contains %v, want no artifact", names)
	}
}

func TestExportEmptySheet(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}

	_, err := quietExporter().Export(context.Background(), sheet.New().Snapshot(), Options{
		Output:  filepath.Join(dir, "out.pdf"),
		OnEvent: rec.record,
	})
	if !errors.Is(err, errors.ErrCodeEmptyModel) {
		t.Fatalf("Export() error = %v, want %s", err, errors.ErrCodeEmptyModel)
	}
	assertNoFile(t, dir)
	if k := rec.kinds(); len(k) != 0 {
		t.Errorf("events = %v, want none", k)
	}
}

func TestExportPortraitPNG(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "sheet.png")
	rec := &recorder{}

	res, err := quietExporter().Export(context.Background(), fullSheet(t, 9).Snapshot(), Options{
		Output:  out,
		OnEvent: rec.record,
	})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if res.Path != out {
		t.Errorf("Path = %q, want %q", res.Path, out)
	}
	if res.Format != "png" {
		t.Errorf("Format = %q, want png (inferred from extension)", res.Format)
	}
	if res.Stats.Slots != 9 {
		t.Errorf("Stats.Slots = %d, want 9", res.Stats.Slots)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig() error: %v", err)
	}
	if cfg.Width != 2480 || cfg.Height != 3508 {
		t.Errorf("artifact is %dx%d, want 2480x3508", cfg.Width, cfg.Height)
	}

	want := []EventKind{EventStarted, EventSucceeded}
	if got := rec.kinds(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestExportPortraitPDF(t *testing.T) {
	dir := t.TempDir()

	res, err := quietExporter().Export(context.Background(), fullSheet(t, 9).Snapshot(), Options{Output: dir})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if want := filepath.Join(dir, "contact-sheet.pdf"); res.Path != want {
		t.Errorf("Path = %q, want %q", res.Path, want)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`/MediaBox \[0 0 595\.2\d* 841\.92\d*\]`).Match(data) {
		t.Error("PDF page is not A4 portrait")
	}
	if !bytes.Contains(data, []byte("/Width 2480")) || !bytes.Contains(data, []byte("/Height 3508")) {
		t.Error("embedded raster is not 2480x3508")
	}
}

func TestExportOrientationToggle(t *testing.T) {
	dir := t.TempDir()
	s := fullSheet(t, 3)
	_ = s.Rotate(1)
	_ = s.AdjustScale(2, 0.5)
	before := s.Slots()

	s.ToggleOrientation()
	res, err := quietExporter().Export(context.Background(), s.Snapshot(), Options{
		Output: filepath.Join(dir, "landscape.png"),
	})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if res.Spec.WidthPx != 3508 || res.Spec.HeightPx != 2480 {
		t.Errorf("Spec = %dx%d, want 3508x2480", res.Spec.WidthPx, res.Spec.HeightPx)
	}

	after := s.Slots()
	for i := range before {
		if before[i].Rotation != after[i].Rotation || before[i].Scale != after[i].Scale {
			t.Errorf("slot %d transform changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestExportInProgress(t *testing.T) {
	gate := newGate()
	observability.SetExportHooks(gate)
	defer observability.Reset()

	dir := t.TempDir()
	exp := quietExporter()
	snap := fullSheet(t, 1).Snapshot()

	job, err := exp.Start(context.Background(), snap, Options{Output: filepath.Join(dir, "a.png")})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	<-gate.entered
	if !exp.Busy() {
		t.Error("Busy() = false while a job is running")
	}

	_, err = exp.Start(context.Background(), snap, Options{Output: filepath.Join(dir, "b.png")})
	if !errors.Is(err, errors.ErrCodeExportInProgress) {
		t.Errorf("second Start() error = %v, want %s", err, errors.ErrCodeExportInProgress)
	}

	close(gate.release)
	if _, err := job.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if exp.Busy() {
		t.Error("Busy() = true after job finished")
	}
	if _, err := os.Stat(filepath.Join(dir, "b.png")); !os.IsNotExist(err) {
		t.Error("rejected export wrote an artifact")
	}

	// The exporter accepts a new job once the previous one is done.
	if _, err := exp.Export(context.Background(), snap, Options{Output: filepath.Join(dir, "c.png")}); err != nil {
		t.Errorf("Export() after completion error: %v", err)
	}
}

func TestExportSnapshotIsolation(t *testing.T) {
	gate := newGate()
	observability.SetExportHooks(gate)
	defer observability.Reset()

	dir := t.TempDir()
	s := sheet.New()
	if err := s.Add(sheet.NewSource("red.png", encodePNG(t, 50, 50, red))); err != nil {
		t.Fatal(err)
	}

	job, err := quietExporter().Start(context.Background(), s.Snapshot(), Options{
		Output: filepath.Join(dir, "out.png"),
		Margin: 10,
		Gutter: 10,
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	<-gate.entered

	// Mutations after Start must not reach the running job.
	_ = s.Remove(0)
	_ = s.SetOrientation(page.Landscape)

	close(gate.release)
	res, err := job.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if res.Spec.Orientation != page.Portrait {
		t.Errorf("orientation = %s, want portrait", res.Spec.Orientation)
	}

	f, err := os.Open(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	l := grid.Compute(page.MustCompute(page.Portrait), 10, grid.WithGutter(10))
	cx, cy := l.Cell(0).Center()
	if r, g, b, _ := img.At(int(cx), int(cy)).RGBA(); r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("slot 0 center = (%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
}

func TestExportCancelled(t *testing.T) {
	gate := newGate()
	observability.SetExportHooks(gate)
	defer observability.Reset()

	dir := t.TempDir()
	rec := &recorder{}
	exp := quietExporter()

	job, err := exp.Start(context.Background(), fullSheet(t, 2).Snapshot(), Options{
		Output:  filepath.Join(dir, "out.pdf"),
		OnEvent: rec.record,
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	<-gate.entered
	job.Cancel()
	close(gate.release)

	_, err = job.Wait(context.Background())
	if !errors.Is(err, errors.ErrCodeCancelled) {
		t.Errorf("Wait() error = %v, want %s", err, errors.ErrCodeCancelled)
	}
	assertNoFile(t, dir)

	want := []EventKind{EventStarted, EventFailed}
	if got := rec.kinds(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
	if exp.Busy() {
		t.Error("Busy() = true after cancelled job")
	}
}

func TestExportDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	s := fullSheet(t, 2)
	if err := s.Add(sheet.NewSource("broken.jpg", []byte("definitely not a jpeg"))); err != nil {
		t.Fatal(err)
	}
	before := s.Slots()

	_, err := quietExporter().Export(context.Background(), s.Snapshot(), Options{
		Output:  filepath.Join(dir, "out.pdf"),
		OnEvent: rec.record,
	})
	if !errors.Is(err, errors.ErrCodeRenderFailure) {
		t.Fatalf("Export() error = %v, want %s", err, errors.ErrCodeRenderFailure)
	}
	assertNoFile(t, dir)

	rec.mu.Lock()
	last := rec.events[len(rec.events)-1]
	rec.mu.Unlock()
	if last.Kind != EventFailed || last.Code != errors.ErrCodeRenderFailure {
		t.Errorf("last event = %v/%s, want failed/%s", last.Kind, last.Code, errors.ErrCodeRenderFailure)
	}
	if s.Len() != len(before) {
		t.Errorf("sheet changed after failed export: %d slots, want %d", s.Len(), len(before))
	}
}

func TestExportWriteFailure(t *testing.T) {
	dir := t.TempDir()
	_, err := quietExporter().Export(context.Background(), fullSheet(t, 1).Snapshot(), Options{
		Output: filepath.Join(dir, "missing", "out.pdf"),
	})
	if !errors.Is(err, errors.ErrCodeWriteFailure) {
		t.Errorf("Export() error = %v, want %s", err, errors.ErrCodeWriteFailure)
	}
}

func TestEventHandlerCanStartNewJob(t *testing.T) {
	dir := t.TempDir()
	exp := quietExporter()
	snap := fullSheet(t, 1).Snapshot()

	var (
		mu      sync.Mutex
		restart error
		second  *Job
	)
	_, err := exp.Export(context.Background(), snap, Options{
		Output: filepath.Join(dir, "first.png"),
		OnEvent: func(ev Event) {
			if ev.Kind != EventSucceeded {
				return
			}
			j, err := exp.Start(context.Background(), snap, Options{Output: filepath.Join(dir, "second.png")})
			mu.Lock()
			second, restart = j, err
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if restart != nil {
		t.Fatalf("Start() from event handler error: %v", restart)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := second.Wait(ctx); err != nil {
		t.Errorf("second job error: %v", err)
	}
}

func TestJobWaitGivesUp(t *testing.T) {
	j := &Job{done: make(chan struct{}), cancel: func() {}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := j.Wait(ctx); !errors.Is(err, errors.ErrCodeCancelled) {
		t.Errorf("Wait() error = %v, want %s", err, errors.ErrCodeCancelled)
	}
}

func TestEventKindString(t *testing.T) {
	tests := map[EventKind]string{
		EventStarted:   "started",
		EventSucceeded: "succeeded",
		EventFailed:    "failed",
		EventKind(42):  "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("EventKind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
