package document

import (
	"context"
	"io"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/matzehuels/contactsheet/pkg/errors"
)

// Save writes doc to path atomically: the bytes go to a pending file in
// the same directory, which is synced and then renamed over path. On any
// failure, including cancellation before the rename, the pending file is
// removed and path is left as it was.
func Save(ctx context.Context, doc *Document, path string) error {
	if doc == nil || len(doc.Data) == 0 {
		return errors.New(errors.ErrCodeEncodeFailure, "empty document")
	}
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeCancelled, err, "save cancelled")
	}

	dir := filepath.Dir(path)
	pf, err := renameio.NewPendingFile(path,
		renameio.WithTempDir(dir),
		renameio.WithPermissions(0o644))
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailure, err, "create temporary file in %s", dir)
	}
	defer pf.Cleanup()

	if _, err := pf.Write(doc.Data); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailure, err, "write %s", path)
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeCancelled, err, "save cancelled")
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailure, err, "replace %s", path)
	}
	return nil
}

// WriteTo writes the encoded document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Data)
	return int64(n), err
}
