package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ─── SINK INTERFACE ──────────────────────────────────────────────────────────

// Sink is the narrow interface the api package uses to hand off an entry
// after responding to the client. Keeping it here (not in api/) means api/
// does not need to import the concrete Recorder type in tests.
type Sink interface {
	Record(e Entry)
}

// ─── RECORDER ────────────────────────────────────────────────────────────────

// RecorderConfig holds tuning parameters for the Recorder. All fields have
// sensible defaults if zero-valued; call DefaultRecorderConfig() to get them.
type RecorderConfig struct {
	// Workers is the number of concurrent writer goroutines. Default: 2.
	Workers int

	// QueueSize is the channel buffer. When the queue is full, Record drops
	// the entry — losing an analytics row is preferable to blocking an HTTP
	// response. Default: 256.
	QueueSize int

	// WriteTimeout is the per-insert context deadline. Default: 10s.
	WriteTimeout time.Duration

	// MaxRetries is the number of insert attempts per entry. Default: 2.
	MaxRetries int
}

// DefaultRecorderConfig returns safe production defaults.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Workers:      2,
		QueueSize:    256,
		WriteTimeout: 10 * time.Second,
		MaxRetries:   2,
	}
}

// Recorder writes entries to a Store from a pool of background goroutines so
// the analyze handler never waits on the database.
type Recorder struct {
	store  Store
	cfg    RecorderConfig
	logger *slog.Logger

	queue chan Entry
	wg    sync.WaitGroup
}

// NewRecorder constructs a Recorder. Call Start() to begin processing.
func NewRecorder(store Store, cfg RecorderConfig, logger *slog.Logger) *Recorder {
	def := DefaultRecorderConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}

	return &Recorder{
		store:  store,
		cfg:    cfg,
		logger: logger,
		queue:  make(chan Entry, cfg.QueueSize),
	}
}

// Record pushes an entry onto the in-process channel. It satisfies the Sink
// interface. If the channel is full the entry is dropped with a warning
// rather than blocking the HTTP response.
func (r *Recorder) Record(e Entry) {
	select {
	case r.queue <- e:
	default:
		r.logger.Warn("analytics: queue full, dropping entry", "diagnosis", e.Diagnosis)
	}
}

// Start launches the writer pool. It blocks until ctx is cancelled and the
// queue has drained. Call it in a goroutine from main:
//
//	go recorder.Start(ctx)
func (r *Recorder) Start(ctx context.Context) {
	r.logger.Info("analytics: recorder starting", "workers", r.cfg.Workers)

	for i := range r.cfg.Workers {
		r.wg.Add(1)
		go r.work(ctx, i)
	}

	r.wg.Wait()
	r.logger.Info("analytics: recorder stopped")
}

// work is the inner loop for each writer goroutine. On shutdown it drains
// whatever is still buffered before returning.
func (r *Recorder) work(ctx context.Context, id int) {
	defer r.wg.Done()
	log := r.logger.With("recorder_worker", id)

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case e := <-r.queue:
					r.write(context.Background(), e, log)
				default:
					return
				}
			}
		case e := <-r.queue:
			r.write(ctx, e, log)
		}
	}
}

// write inserts one entry with bounded retries. Permanent failure is logged
// and swallowed — analytics never propagates errors anywhere.
func (r *Recorder) write(ctx context.Context, e Entry, log *slog.Logger) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		writeCtx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
		lastErr = r.store.Insert(writeCtx, e)
		cancel()

		if lastErr == nil {
			return
		}
		if attempt < r.cfg.MaxRetries {
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
			}
		}
	}
	log.Error("analytics: insert failed, entry dropped", "error", lastErr)
}

// ─── NOOP SINK ───────────────────────────────────────────────────────────────

// NoopSink discards every entry. Used when analytics is disabled.
type NoopSink struct{}

func (NoopSink) Record(Entry) {}
