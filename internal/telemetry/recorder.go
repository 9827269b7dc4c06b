package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"perflab/internal/host"
	"perflab/internal/logging"
)

const defaultFlushInterval = 2 * time.Second

// PassWriter is the write side of Repo.
type PassWriter interface {
	InsertPasses(ctx context.Context, passes []host.Pass) error
}

// Recorder buffers passes from a host.Session and writes them in batches.
// Record never blocks the paint path: when the buffer is full the pass is
// dropped and counted.
type Recorder struct {
	writer   PassWriter
	interval time.Duration
	queue    chan host.Pass
	dropped  atomic.Uint64

	// flushMu keeps each drain and its insert together, so batches reach
	// the writer in the order passes were recorded.
	flushMu sync.Mutex

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewRecorder creates a recorder holding at most bufferSize pending passes.
func NewRecorder(w PassWriter, bufferSize int, interval time.Duration) (*Recorder, error) {
	if w == nil {
		return nil, errors.New("pass writer is required")
	}
	if bufferSize <= 0 {
		return nil, errors.New("buffer size must be positive")
	}
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	return &Recorder{
		writer:   w,
		interval: interval,
		queue:    make(chan host.Pass, bufferSize),
	}, nil
}

// Record implements host.Sink.
func (r *Recorder) Record(p host.Pass) {
	select {
	case r.queue <- p:
	default:
		r.dropped.Add(1)
	}
}

// Dropped reports how many passes were discarded because the buffer was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Start begins the periodic flush loop.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("recorder already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.wg.Add(1)
	r.mu.Unlock()

	go r.loop(ctx)
	return nil
}

// Stop ends the flush loop and writes whatever is still buffered.
func (r *Recorder) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.running = false
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Flush(ctx); err != nil {
		logging.Warnf("final telemetry flush failed: %v", err)
	}
}

// Flush drains the buffer and writes it immediately.
func (r *Recorder) Flush(ctx context.Context) error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	var batch []host.Pass
	for {
		select {
		case p := <-r.queue:
			batch = append(batch, p)
			continue
		default:
		}
		break
	}
	if len(batch) == 0 {
		return nil
	}
	if err := r.writer.InsertPasses(ctx, batch); err != nil {
		return fmt.Errorf("write %d passes: %w", len(batch), err)
	}
	logging.Debugf("flushed %d render passes", len(batch))
	return nil
}

func (r *Recorder) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Flush(ctx); err != nil {
				logging.Errorf("telemetry flush failed: %v", err)
			}
		}
	}
}
