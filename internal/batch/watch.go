package batch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ironsheep/tilecode/internal/report"
)

// DefaultSettle is how long a file must be quiet before it is scanned.
const DefaultSettle = 2 * time.Second

// Watch scans documents dropped into dir until ctx is cancelled.
//
// Documents already present are scanned first. New or rewritten files are
// scanned once no write has been seen for settle, so scanners that write a
// page in several chunks are not read half-written. Documents are processed
// one at a time on the calling goroutine, and files the runner renamed are
// not picked up again.
func (r *Runner) Watch(ctx context.Context, dir string, settle time.Duration, run *report.Run) error {
	if settle <= 0 {
		settle = DefaultSettle
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	r.logger.Info("watching", "dir", dir, "settle", settle, "run", run.ID)

	produced := make(map[string]bool)
	process := func(path string) {
		entry := r.ProcessFile(ctx, path, run)
		if entry.NewPath != "" {
			produced[entry.NewPath] = true
		}
	}

	existing, err := r.Collect([]string{dir})
	if err != nil {
		return err
	}
	for _, path := range existing {
		if ctx.Err() != nil {
			return nil
		}
		process(path)
	}

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("watch stopped", "dir", dir, "pending", len(pending))
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if produced[event.Name] || !r.Eligible(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watch error", "dir", dir, "error", err)

		case now := <-ticker.C:
			var ready []string
			for path, last := range pending {
				if now.Sub(last) >= settle {
					ready = append(ready, path)
				}
			}
			sort.Strings(ready)
			for _, path := range ready {
				if ctx.Err() != nil {
					return nil
				}
				delete(pending, path)
				process(path)
			}
		}
	}
}
