package config

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file whenever it is written, so timing
// constants can be recalibrated while a cycle is running.
type Watcher struct {
	store    *JSONStore
	watcher  *fsnotify.Watcher
	onChange func(*Config)
	done     chan struct{}
}

// Watch starts watching the store's directory. onChange receives every
// config that loads and validates; rejected files are logged and skipped.
// Unlike Load, a missing or half-written file never falls back to defaults,
// so the running config stays in force until the next good write.
func Watch(store *JSONStore, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(store.Path())); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		store:    store,
		watcher:  fw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	path := w.store.Path()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Editors and JSONStore.Save replace the file via rename, which
			// shows up as Create on the target name.
			if event.Name != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			cfg, err := w.store.loadStrict()
			if err != nil {
				slog.Warn("config: reload rejected", "path", path, "err", err)
				continue
			}
			slog.Info("config: reloaded", "path", path,
				"pulse_hold_us", cfg.Timing.PulseHoldUS,
				"settle_us", cfg.Timing.SettleUS)
			w.onChange(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config: watcher error", "err", err)
		}
	}
}
