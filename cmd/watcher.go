package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"antom-cli/cmd/utils"

	"github.com/fsnotify/fsnotify"
)

// PDFWatcher reports PDFs that are created or rewritten in a directory.
type PDFWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewPDFWatcher creates a watcher that groups changes arriving within
// debounce of each other into one batch.
func NewPDFWatcher(debounce time.Duration) (*PDFWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &PDFWatcher{watcher: w, debounce: debounce}, nil
}

// Watch starts monitoring dir. Each batch holds the distinct changed paths,
// sorted. The channel closes when ctx is done or the watcher is closed.
func (w *PDFWatcher) Watch(ctx context.Context, dir string) (<-chan []string, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return batchPDFEvents(ctx, w.watcher.Events, w.watcher.Errors, w.debounce), nil
}

// Close stops the watcher.
func (w *PDFWatcher) Close() error {
	return w.watcher.Close()
}

// isPDFPath matches by extension only; content is checked at upload time.
func isPDFPath(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".pdf")
}

func batchPDFEvents(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, debounce time.Duration) <-chan []string {
	out := make(chan []string)

	go func() {
		defer close(out)

		pending := make(map[string]struct{})
		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		flush := func() bool {
			fire = nil
			if len(pending) == 0 {
				return true
			}
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = make(map[string]struct{})

			select {
			case out <- batch:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					flush()
					return
				}
				if !isPDFPath(event.Name) {
					continue
				}
				switch {
				case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
					pending[event.Name] = struct{}{}
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					delete(pending, event.Name)
					continue
				default:
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				if !flush() {
					return
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				utils.LogDebug(fmt.Sprintf("watcher error: %v", err))
			}
		}
	}()

	return out
}
