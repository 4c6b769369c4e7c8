// Package reconcile removes per-object files whose identifier is no longer
// referenced by any artifact.
package reconcile

import (
	"context"
	"os"

	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/specialistvlad/shaderbuild/internal/fsutil"
	"github.com/specialistvlad/shaderbuild/internal/model"
)

// Reconcile deletes every file in objectDir with extension ext whose stem is
// neither reservedStem nor a member of ids. It returns the removed paths in
// lexical order.
//
// Listing objectDir is fatal. A failed deletion is logged and skipped; the
// file will be retried on the next run.
func Reconcile(ctx context.Context, objectDir, ext, reservedStem string, ids model.ObjectSet) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.ListFiles(objectDir, ext)
	if err != nil {
		return nil, model.IOFailure(objectDir, err)
	}

	var removed []string
	for _, file := range files {
		if file.Stem == reservedStem || ids.Has(file.Stem) {
			continue
		}
		if err := os.Remove(file.Path); err != nil {
			logger.Warn("Failed to remove stale object file.", "path", file.Path, "error", err)
			continue
		}
		logger.Info("Removed stale object file.", "path", file.Path)
		removed = append(removed, file.Path)
	}
	return removed, nil
}
