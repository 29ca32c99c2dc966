package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/contactsheet/pkg/observability"
)

// LogHooks reports export stages and source loading to a logger at debug
// level. Failures are logged at warn level.
type LogHooks struct {
	observability.NoopExportHooks
	logger *log.Logger
}

// NewLogHooks creates hooks logging to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

var (
	_ observability.ExportHooks = (*LogHooks)(nil)
	_ observability.SourceHooks = (*LogHooks)(nil)
)

func (h *LogHooks) stage(name, jobID string, d time.Duration, err error, keyvals ...any) {
	keyvals = append([]any{"stage", name, "job", jobID, "duration", d.Round(time.Millisecond)}, keyvals...)
	if err != nil {
		h.logger.Warn("stage failed", append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug("stage complete", keyvals...)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, jobID string, d time.Duration, err error) {
	h.stage("render", jobID, d, err)
}

func (h *LogHooks) OnEncodeComplete(_ context.Context, jobID, format string, size int, d time.Duration, err error) {
	h.stage("encode", jobID, d, err, "format", format, "bytes", size)
}

func (h *LogHooks) OnSaveComplete(_ context.Context, jobID, path string, d time.Duration, err error) {
	h.stage("save", jobID, d, err, "path", path)
}

func (h *LogHooks) OnSourceLoad(_ context.Context, name string, size int, err error) {
	if err != nil {
		h.logger.Warn("image unreadable", "name", name, "err", err)
		return
	}
	h.logger.Debug("read image", "name", name, "bytes", size)
}

func (h *LogHooks) OnSourceRejected(_ context.Context, name string, err error) {
	h.logger.Warn("image rejected", "name", name, "err", err)
}
