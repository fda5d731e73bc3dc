package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// debounce groups the events of editors that write a file in several steps.
const debounce = 100 * time.Millisecond

// Watch runs fn once and again each time one of the files changes,
// until the context is done. Errors of fn are logged, not returned.
func Watch(ctx context.Context, log logrus.FieldLogger, files []string, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Directories are watched so that files replaced on save are still seen.
	watched := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = true
		if err := w.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", f, err)
		}
	}

	runOnce := func() {
		if err := fn(); err != nil {
			log.WithError(err).Error("generation failed")
		}
	}
	runOnce()
	log.WithField("files", files).Info("watching for changes")

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !watched[abs] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			log.WithFields(logrus.Fields{"file": ev.Name, "op": ev.Op.String()}).Debug("file changed")
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		case <-timer.C:
			runOnce()
		}
	}
}
