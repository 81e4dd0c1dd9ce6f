// Package watcher re-runs the build pipeline when project sources change.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/tspack/tspack/pkg/project"
)

// debounceWindow batches rapid editor saves into a single rebuild.
const debounceWindow = 200 * time.Millisecond

// Watcher watches a project's src/ tree and configuration files.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	ignore  []string
	log     *logrus.Logger
}

// New creates a watcher rooted at the project directory. ignoreDirs are
// project-relative directories whose changes never trigger a rebuild,
// typically the build output directories.
func New(dir string, ignoreDirs []string, log *logrus.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{watcher: fw, dir: dir, ignore: ignoreDirs, log: log}, nil
}

// Run watches until ctx is cancelled, calling onChange after each
// debounced batch of events. Errors from onChange are logged, not fatal:
// a broken intermediate state should not kill the watch loop.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	defer w.watcher.Close()

	if err := w.addSourceDirs(); err != nil {
		return err
	}
	// Config edits retrigger too; the project root covers tsconfig.json,
	// tspack.yml, and package.json.
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.log.Infof("watching %s for changes", filepath.Join(w.dir, project.SourceDir))

	flushTimer := time.NewTimer(debounceWindow)
	flushTimer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugf("change detected: %s", event.Name)

			// New subdirectories under src/ need their own watch.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
			}

			pending = true
			flushTimer.Reset(debounceWindow)

		case <-flushTimer.C:
			if !pending {
				continue
			}
			pending = false
			if err := onChange(ctx); err != nil {
				w.log.WithError(err).Error("rebuild failed")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Error("watcher error")
		}
	}
}

// addSourceDirs walks src/ and watches every directory in it.
func (w *Watcher) addSourceDirs() error {
	srcPath := filepath.Join(w.dir, project.SourceDir)
	err := filepath.Walk(srcPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip files we can't access
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				w.log.WithError(err).Warnf("failed to watch %s", path)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", srcPath, err)
	}
	return nil
}

// relevant filters out events for build output and node_modules, which
// would otherwise retrigger the build that produced them.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if strings.HasPrefix(rel, "node_modules/") {
		return false
	}
	for _, dir := range w.ignore {
		if rel == dir || strings.HasPrefix(rel, filepath.ToSlash(dir)+"/") {
			return false
		}
	}
	if strings.HasPrefix(rel, project.SourceDir+"/") {
		return true
	}
	switch rel {
	case "tsconfig.json", "tspack.yml", "package.json":
		return true
	}
	return false
}
