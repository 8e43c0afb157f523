package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/micro-nova/chipprobe/internal/config"
)

func TestWatcher_ReloadsOnSave(t *testing.T) {
	store := config.NewJSONStore(t.TempDir())
	def := config.Default()
	if err := store.Save(&def); err != nil {
		t.Fatal(err)
	}

	changes := make(chan *config.Config, 8)
	w, err := config.Watch(store, func(c *config.Config) { changes <- c })
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	cfg := config.Default()
	cfg.Timing.PulseHoldUS = 300
	cfg.Timing.SettleUS = 1200
	if err := store.Save(&cfg); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-changes:
			if got.Timing.PulseHoldUS == 300 && got.Timing.SettleUS == 1200 {
				return
			}
		case <-deadline:
			t.Fatal("no reload within 3s")
		}
	}
}

func TestWatcher_SkipsHalfWrittenFile(t *testing.T) {
	store := config.NewJSONStore(t.TempDir())
	cfg := config.Default()
	cfg.Timing.PulseHoldUS = 300
	cfg.Timing.SettleUS = 1200
	if err := store.Save(&cfg); err != nil {
		t.Fatal(err)
	}

	changes := make(chan *config.Config, 8)
	w, err := config.Watch(store, func(c *config.Config) { changes <- c })
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	// An editor caught mid-write.
	if err := os.WriteFile(store.Path(), []byte(`{"timing": {"pulse_hold_us": 3`), 0644); err != nil {
		t.Fatal(err)
	}
	// A good write afterwards is the only reload that may come through.
	cfg.Timing.PulseHoldUS = 400
	cfg.Timing.SettleUS = 1600
	if err := store.Save(&cfg); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-changes:
			if got.Timing.PulseHoldUS != 400 || got.Timing.SettleUS != 1600 {
				t.Fatalf("reloaded timing %d/%d from a partial file, want 400/1600",
					got.Timing.PulseHoldUS, got.Timing.SettleUS)
			}
			return
		case <-deadline:
			t.Fatal("no reload within 3s")
		}
	}
}

func TestWatcher_Close(t *testing.T) {
	store := config.NewJSONStore(t.TempDir())
	w, err := config.Watch(store, func(*config.Config) {})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	done := make(chan struct{})
	go func() {
		w.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Close() did not return")
	}
}
