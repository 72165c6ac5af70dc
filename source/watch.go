package source

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/denorm"
)

// Watch calls fn with the reloaded graph, or the load error, every time the
// file at path is written or recreated. It watches the parent directory so
// editors that replace the file on save are handled. Watch blocks until ctx
// is done and then returns nil.
func Watch(ctx context.Context, path string, fn func(denorm.Graph, error), logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return denorm.NewSourceError(path, "watch", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return denorm.NewSourceError(path, "watch", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return denorm.NewSourceError(path, "watch", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("graph file changed", "path", path, "op", ev.Op.String())
			g, err := LoadFile(path)
			fn(g, err)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "path", path, "error", err)
		}
	}
}
