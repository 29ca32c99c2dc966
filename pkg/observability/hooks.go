// Package observability provides hooks for metrics, tracing, and logging.
//
// The export pipeline and the source loader report their stages through
// hook interfaces instead of depending on a particular backend. The
// defaults are no-ops; main may register its own implementations before
// any work starts.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetExportHooks(&myExportHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Export().OnRenderStart(ctx, jobID, slots)
//	// ... rasterize ...
//	observability.Export().OnRenderComplete(ctx, jobID, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from the export pipeline. jobID identifies
// one export run.
type ExportHooks interface {
	// Job events
	OnExportStart(ctx context.Context, jobID string, slots int, orientation string)
	OnExportComplete(ctx context.Context, jobID string, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, jobID string, slots int)
	OnRenderComplete(ctx context.Context, jobID string, duration time.Duration, err error)

	// Encode events
	OnEncodeStart(ctx context.Context, jobID, format string)
	OnEncodeComplete(ctx context.Context, jobID, format string, size int, duration time.Duration, err error)

	// Save events
	OnSaveStart(ctx context.Context, jobID, path string)
	OnSaveComplete(ctx context.Context, jobID, path string, duration time.Duration, err error)
}

// =============================================================================
// Source Hooks
// =============================================================================

// SourceHooks receives events when input images are loaded.
type SourceHooks interface {
	// OnSourceLoad records one image read from disk.
	OnSourceLoad(ctx context.Context, name string, size int, err error)

	// OnSourceRejected records an image refused by the sheet.
	OnSourceRejected(ctx context.Context, name string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, string, int, string)                   {}
func (NoopExportHooks) OnExportComplete(context.Context, string, time.Duration, error)       {}
func (NoopExportHooks) OnRenderStart(context.Context, string, int)                           {}
func (NoopExportHooks) OnRenderComplete(context.Context, string, time.Duration, error)       {}
func (NoopExportHooks) OnEncodeStart(context.Context, string, string)                        {}
func (NoopExportHooks) OnSaveStart(context.Context, string, string)                          {}
func (NoopExportHooks) OnSaveComplete(context.Context, string, string, time.Duration, error) {}
func (NoopExportHooks) OnEncodeComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnSourceLoad(context.Context, string, int, error) {}
func (NoopSourceHooks) OnSourceRejected(context.Context, string, error)  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	exportHooks ExportHooks = NoopExportHooks{}
	sourceHooks SourceHooks = NoopSourceHooks{}
	hooksMu     sync.RWMutex
)

// SetExportHooks registers custom export hooks.
// This should be called once at application startup before any export runs.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetSourceHooks registers custom source hooks.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Source returns the registered source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Reset restores all hooks to their no-op defaults. Intended for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	exportHooks = NoopExportHooks{}
	sourceHooks = NoopSourceHooks{}
}
