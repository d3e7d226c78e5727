package journal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nerrad567/earpanel-core/internal/session"
)

const (
	defaultBufferSize    = 256
	defaultPruneInterval = time.Hour
	writeTimeout         = 5 * time.Second
)

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// RecorderOptions configures a Recorder. Zero values select defaults.
type RecorderOptions struct {
	BufferSize int
	// Retention enables periodic pruning when positive.
	Retention     time.Duration
	PruneInterval time.Duration
	Logger        Logger
}

// Recorder is a session.EventSink that writes events to a Store from its
// own goroutine. HandleEvent never blocks; events arriving while the buffer
// is full are dropped and counted.
type Recorder struct {
	store   *Store
	events  chan session.Event
	opts    RecorderOptions
	logger  Logger
	dropped atomic.Uint64
	done    chan struct{}
}

var _ session.EventSink = (*Recorder)(nil)

// NewRecorder creates a recorder. Call Run to start writing.
func NewRecorder(store *Store, opts RecorderOptions) *Recorder {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.PruneInterval <= 0 {
		opts.PruneInterval = defaultPruneInterval
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	return &Recorder{
		store:  store,
		events: make(chan session.Event, opts.BufferSize),
		opts:   opts,
		logger: opts.Logger,
		done:   make(chan struct{}),
	}
}

// HandleEvent queues e for writing.
func (r *Recorder) HandleEvent(e session.Event) {
	select {
	case r.events <- e:
	default:
		n := r.dropped.Add(1)
		r.logger.Warn("journal buffer full, dropping event", "type", e.Type, "dropped", n)
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Done is closed once Run has drained and returned. Close the store only
// after it fires.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

// Run writes queued events until ctx is cancelled, then drains what is
// already buffered. Call it once.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)

	var pruneC <-chan time.Time
	if r.opts.Retention > 0 {
		ticker := time.NewTicker(r.opts.PruneInterval)
		defer ticker.Stop()
		pruneC = ticker.C
		r.prune()
	}

	for {
		select {
		case e := <-r.events:
			r.write(e)
		case <-pruneC:
			r.prune()
		case <-ctx.Done():
			r.drain()
			return
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case e := <-r.events:
			r.write(e)
		default:
			return
		}
	}
}

func (r *Recorder) write(e session.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.store.Record(ctx, e); err != nil {
		r.logger.Error("journal write failed", "type", e.Type, "error", err)
	}
}

func (r *Recorder) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	n, err := r.store.Prune(ctx, r.opts.Retention)
	if err != nil {
		r.logger.Error("journal prune failed", "error", err)
		return
	}
	if n > 0 {
		r.logger.Debug("journal pruned", "deleted", n)
	}
}
