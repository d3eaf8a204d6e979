package registry

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/de-tools/industry-reports/pkg/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher reloads the registry whenever the metadata file changes on disk.
type Watcher struct {
	path     string
	registry Registry
	logger   zerolog.Logger
	debounce time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewWatcher(path string, registry Registry, logger zerolog.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		registry: registry,
		logger:   logger,
		debounce: defaultDebounce,
		stop:     make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than the file
// itself so that replace-by-rename saves are observed.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer watcher.Close()

		w.logger.Info().Str("path", w.path).Msg("watching metadata file")

		var (
			timer  *time.Timer
			reload <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				reload = timer.C

			case <-reload:
				reload = nil
				w.reload(ctx)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error().Err(err).Msg("metadata watcher error")

			case <-w.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the watcher and waits for it to exit. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	w.wg.Wait()
}

func (w *Watcher) reload(ctx context.Context) {
	ctx = w.logger.WithContext(ctx)

	snapshot, err := Load(ctx, w.path)
	if err != nil {
		metrics.RegistryReloadsTotal.WithLabelValues("error").Inc()
		w.logger.Error().Err(err).Msg("failed to reload metadata, keeping previous snapshot")
		return
	}

	if err := w.registry.Replace(ctx, snapshot); err != nil {
		metrics.RegistryReloadsTotal.WithLabelValues("error").Inc()
		w.logger.Error().Err(err).Msg("rejected reloaded metadata, keeping previous snapshot")
		return
	}

	metrics.RegistryReloadsTotal.WithLabelValues("ok").Inc()
	w.logger.Info().
		Int("reports", len(snapshot.Reports)).
		Str("period", snapshot.CurrentPeriod).
		Msg("metadata reloaded")
}
