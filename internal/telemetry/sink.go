package telemetry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"callinsight_backend/platform/logger"
)

const defaultBuffer = 256

// Exporter ships one event somewhere. Errors are counted, never returned to
// the request that produced the event.
type Exporter interface {
	Name() string
	Export(ctx context.Context, event Event) error
}

// Config configures the sink pipeline.
type Config struct {
	Buffer    int
	Exporters []Exporter
	Logger    *logger.Logger
}

// Stats is a snapshot of the sink counters.
type Stats struct {
	Exported uint64
	Dropped  uint64
	Failed   uint64
}

// Sink accepts events from any goroutine. Until Initialize is called, Log is
// a no-op.
type Sink struct {
	initialized atomic.Bool
	pipeline    atomic.Pointer[pipeline]

	exported atomic.Uint64
	dropped  atomic.Uint64
	failed   atomic.Uint64
}

type pipeline struct {
	events    chan Event
	quit      chan struct{}
	stop      sync.Once
	done      chan struct{}
	exporters []Exporter
	log       *logger.Logger
}

// NewSink returns an uninitialized sink.
func NewSink() *Sink {
	return &Sink{}
}

// Initialize starts the export goroutine. Only the first call has an effect;
// it returns false on every later call.
func (s *Sink) Initialize(cfg Config) bool {
	if !s.initialized.CompareAndSwap(false, true) {
		return false
	}

	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	p := &pipeline{
		events:    make(chan Event, cfg.Buffer),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		exporters: append([]Exporter(nil), cfg.Exporters...),
		log:       cfg.Logger,
	}
	s.pipeline.Store(p)
	go s.run(p)
	return true
}

// Initialized reports whether Initialize has run.
func (s *Sink) Initialized() bool {
	return s.initialized.Load()
}

// Log queues an event. It never blocks: when the buffer is full the event is
// dropped.
func (s *Sink) Log(event Event) {
	p := s.pipeline.Load()
	if p == nil {
		return
	}
	select {
	case p.events <- event:
	default:
		s.dropped.Add(1)
	}
}

// Shutdown exports what is already buffered and stops the export goroutine.
// Events logged afterwards stay buffered until dropped.
func (s *Sink) Shutdown(ctx context.Context) error {
	p := s.pipeline.Load()
	if p == nil {
		return nil
	}

	p.stop.Do(func() { close(p.quit) })

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("telemetry: shutdown timed out"), ctx.Err())
	}
}

// Stats returns the current counters.
func (s *Sink) Stats() Stats {
	return Stats{
		Exported: s.exported.Load(),
		Dropped:  s.dropped.Load(),
		Failed:   s.failed.Load(),
	}
}

func (s *Sink) run(p *pipeline) {
	defer close(p.done)
	for {
		select {
		case event := <-p.events:
			s.export(p, event)
		case <-p.quit:
			for {
				select {
				case event := <-p.events:
					s.export(p, event)
				default:
					return
				}
			}
		}
	}
}

func (s *Sink) export(p *pipeline, event Event) {
	ctx := context.Background()
	for _, exp := range p.exporters {
		if err := safeExport(ctx, exp, event); err != nil {
			s.failed.Add(1)
			p.log.Debug("telemetry export failed", "exporter", exp.Name(), "error", err)
		}
	}
	s.exported.Add(1)
}

func safeExport(ctx context.Context, exp Exporter, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("exporter panicked")
		}
	}()
	return exp.Export(ctx, event)
}
