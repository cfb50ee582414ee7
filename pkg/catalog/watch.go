package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// SeedWatcher re-applies a seed file to the database whenever it changes on
// disk, then calls OnChange (typically a cache refresh)
type SeedWatcher struct {
	path     string
	db       *sqlx.DB
	logger   *logrus.Logger
	OnChange func(ctx context.Context) error
}

// NewSeedWatcher creates a watcher for the seed file at path
func NewSeedWatcher(path string, db *sqlx.DB, logger *logrus.Logger) *SeedWatcher {
	return &SeedWatcher{
		path:   filepath.Clean(path),
		db:     db,
		logger: logger,
	}
}

// Apply reads the seed file and upserts it
func (w *SeedWatcher) Apply(ctx context.Context) error {
	cat, err := ReadSeedFile(w.path)
	if err != nil {
		return err
	}
	if err := Seed(ctx, w.db, cat); err != nil {
		return err
	}
	w.logger.WithFields(logrus.Fields{
		"file":   w.path,
		"plans":  len(cat.Plans()),
		"addons": len(cat.AddOns()),
	}).Info("Catalog seed applied")

	if w.OnChange != nil {
		return w.OnChange(ctx)
	}
	return nil
}

// Run watches the file until ctx is cancelled. The parent directory is
// watched since editors often replace the file instead of writing to it.
// A bad edit is logged and the previous catalog stays in place.
func (w *SeedWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.Apply(ctx); err != nil {
				w.logger.WithError(err).WithField("file", w.path).Warn("Failed to apply catalog seed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Seed watcher error")
		}
	}
}
