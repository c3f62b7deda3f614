package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/climateops/powerfetch/internal/logging"
)

func TestWatcherFiresOnceForBurst(t *testing.T) {
	dir := t.TempDir()

	var fired atomic.Int32
	w, err := New(dir, logging.Nop(), func() { fired.Add(1) }, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// A burst of writes, as an update run produces.
	for _, name := range []string{"A001_20060101_20230118.csv", "A713_20060101_20230118.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("datetime,PRECTOT\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.After(3 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher never fired")
		case <-time.After(20 * time.Millisecond):
		}
	}

	// Allow a settle period; the burst must have been coalesced.
	time.Sleep(300 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("onChange fired %d times, want 1", got)
	}

	cancel()
	<-done
}

func TestWatcherIgnoresNonCSV(t *testing.T) {
	dir := t.TempDir()

	var fired atomic.Int32
	w, err := New(dir, logging.Nop(), func() { fired.Add(1) }, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("onChange fired %d times for non-CSV file", got)
	}
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), logging.Nop(), func() {})
	if err == nil {
		t.Fatal("New() expected error for missing directory")
	}
}
