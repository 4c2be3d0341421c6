package utils

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// BackgroundProcessManager owns the bot's long-running loops. Every process runs under a child
// of the manager's context, so Shutdown stops all of them at once.
type BackgroundProcessManager struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	processes map[string]*processInfo
}

type processInfo struct {
	description string
	cancel      context.CancelFunc
	started     time.Time
}

func NewBackgroundProcessManager() *BackgroundProcessManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &BackgroundProcessManager{
		ctx:       ctx,
		cancel:    cancel,
		processes: make(map[string]*processInfo),
	}
}

// StartProcess runs fn on its own goroutine. Starting a name that is already running replaces the
// old process. A panic in fn is logged and ends only that process.
func (bpm *BackgroundProcessManager) StartProcess(name, description string, fn func(ctx context.Context)) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	if bpm.ctx.Err() != nil {
		slog.Warn("Process manager is shut down, not starting process",
			slog.String("type", "sys"),
			slog.String("process", name))
		return
	}
	if _, exists := bpm.processes[name]; exists {
		slog.Warn("Process already running, replacing it",
			slog.String("type", "sys"),
			slog.String("process", name))
		bpm.stopLocked(name)
	}

	ctx, cancel := context.WithCancel(bpm.ctx)
	info := &processInfo{description: description, cancel: cancel, started: time.Now()}
	bpm.processes[name] = info

	bpm.wg.Add(1)
	go func() {
		defer bpm.wg.Done()
		defer bpm.forget(name, info)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background process panic",
					slog.String("type", "error"),
					slog.String("process", name),
					slog.Any("panic", r))
			}
		}()

		slog.Info("Starting background process",
			slog.String("type", "sys"),
			slog.String("process", name),
			slog.String("description", description))

		fn(ctx)

		slog.Info("Background process ended",
			slog.String("type", "sys"),
			slog.String("process", name),
			slog.Duration("uptime", time.Since(info.started)))
	}()
}

func (bpm *BackgroundProcessManager) StopProcess(name string) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	bpm.stopLocked(name)
}

func (bpm *BackgroundProcessManager) stopLocked(name string) {
	if p, ok := bpm.processes[name]; ok {
		p.cancel()
		delete(bpm.processes, name)
	}
}

// forget drops a finished process unless it has already been replaced.
func (bpm *BackgroundProcessManager) forget(name string, info *processInfo) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	if bpm.processes[name] == info {
		info.cancel()
		delete(bpm.processes, name)
	}
}

// Shutdown cancels every process and waits up to timeout for them to return.
func (bpm *BackgroundProcessManager) Shutdown(timeout time.Duration) error {
	slog.Info("Shutting down background processes",
		slog.String("type", "sys"),
		slog.Int("process_count", bpm.Count()))

	bpm.cancel()

	done := make(chan struct{})
	go func() {
		bpm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("All background processes stopped", slog.String("type", "sys"))
		return nil
	case <-time.After(timeout):
		slog.Warn("Timeout waiting for background processes to stop",
			slog.String("type", "sys"),
			slog.Duration("timeout", timeout))
		return context.DeadlineExceeded
	}
}

func (bpm *BackgroundProcessManager) Count() int {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	return len(bpm.processes)
}

// Names returns the running process names in sorted order.
func (bpm *BackgroundProcessManager) Names() []string {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	names := make([]string, 0, len(bpm.processes))
	for name := range bpm.processes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
