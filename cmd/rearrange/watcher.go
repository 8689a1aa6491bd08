package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/setanarut/rearranger"
)

// debouncer coalesces rapid event bursts into a single callback per key.
// After stop no new callback starts, and wait blocks until the ones already
// running return.
type debouncer struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	delay   time.Duration
	onFire  func(key string)
	stopped bool
	running sync.WaitGroup
}

func newDebouncer(delay time.Duration, onFire func(key string)) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[key] = time.AfterFunc(d.delay, func() { d.fire(key) })
}

func (d *debouncer) fire(key string) {
	d.mu.Lock()
	delete(d.timers, key)
	if d.stopped {
		// The timer fired before stop could cancel it.
		d.mu.Unlock()
		return
	}
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.onFire(key)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}

// wait blocks until every callback that started before stop has returned.
func (d *debouncer) wait() {
	d.running.Wait()
}

// watchJob re-runs a transfer when either input changes. Runs never
// overlap, and a run only starts once both inputs decode.
type watchJob struct {
	job    job
	cfg    *Config
	inputs map[string]bool // absolute input paths
	mu     sync.Mutex
}

func newWatchJob(j job, cfg *Config) (*watchJob, error) {
	inputs := make(map[string]bool, 2)
	for _, p := range []string{j.structure, j.colorMap} {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		inputs[abs] = true
	}
	return &watchJob{job: j, cfg: cfg, inputs: inputs}, nil
}

func (w *watchJob) isInput(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return w.inputs[abs]
}

// dirs returns the distinct directories holding the inputs.
func (w *watchJob) dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for p := range w.inputs {
		d := filepath.Dir(p)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// run transfers once unless ctx is already done.
func (w *watchJob) run(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	if _, err := process(w.job, w.cfg); err != nil {
		// Usually a half-written input; the next write event retries.
		fmt.Fprintf(os.Stderr, "Error: %v (waiting for both inputs)\n", err)
		return
	}
	fmt.Printf("Rearranged '%s' + '%s' -> '%s' (%.2fs)\n",
		filepath.Base(w.job.structure), filepath.Base(w.job.colorMap), filepath.Base(w.job.output),
		time.Since(start).Seconds())
}

func runWatchMode(j job, cfg *Config) error {
	wj, err := newWatchJob(j, cfg)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range wj.dirs() {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		fmt.Printf("Watching: %s\n", dir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	// Both inputs share one key so a burst touching both runs once.
	db := newDebouncer(cfg.Watch.Debounce(), func(string) { wj.run(ctx) })
	defer db.stop()

	if !isUpToDate(j.output, j.structure, j.colorMap) {
		wj.run(ctx)
	} else {
		fmt.Printf("'%s' is already up-to-date.\n", j.output)
	}

	fmt.Println("Ready. Waiting for input changes...")
	eventLoop(ctx, w, wj, db)

	db.stop()
	fmt.Println("Waiting for in-flight transfer...")
	db.wait()
	fmt.Println("Shutdown complete.")
	return nil
}

func eventLoop(ctx context.Context, w *fsnotify.Watcher, wj *watchJob, db *debouncer) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !wj.isInput(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				rearranger.Logger().Warn("input removed", "path", ev.Name)
				continue
			}
			if ev.Has(fsnotify.Rename) {
				if _, err := os.Stat(ev.Name); err != nil {
					continue
				}
			}
			db.trigger("inputs")

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		}
	}
}

// isUpToDate reports whether output exists and is not older than any input.
func isUpToDate(output string, inputs ...string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return false
	}
	for _, in := range inputs {
		inInfo, err := os.Stat(in)
		if err != nil || outInfo.ModTime().Before(inInfo.ModTime()) {
			return false
		}
	}
	return true
}
