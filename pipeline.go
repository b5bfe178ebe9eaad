package fovea

import (
	"errors"

	"github.com/rs/xid"

	"pipelined.dev/fovea/gaze"
	"pipelined.dev/fovea/log"
	"pipelined.dev/fovea/media"
	"pipelined.dev/fovea/queue"
)

// Queue types linking the stages.
type (
	// PacketQueue links reader to decoder and encoder to the boundary
	// consumer.
	PacketQueue = queue.Queue[queue.Item[*media.Packet]]
	// FrameQueue links decoder to encoder.
	FrameQueue = queue.Queue[queue.Item[*media.Frame]]
	// LagQueue carries one lag sample per encoded frame.
	LagQueue = queue.Queue[queue.Item[media.LagSample]]
)

const (
	// defaultCapacity absorbs jitter on the reader->decoder and
	// decoder->encoder queues without affecting the real-time bound.
	defaultCapacity = 32
	// outputCapacity is fixed at 1 to enforce real-time processing:
	// the encoder stalls whenever downstream consumption lags.
	outputCapacity = 1
	// defaultLagCapacity keeps the lag side channel from stalling the
	// packet path.
	defaultLagCapacity = 32
)

// Logger is a global interface for pipeline loggers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
}

// Routing defines the collaborators of a pipeline. Source, Decoder and
// Encoder are mandatory. The encoder must have been initialized from
// the decoder's resolved stream parameters. Foveation defaults to a
// centered static gaze.
type Routing struct {
	Source    media.Source
	Decoder   media.Decoder
	Encoder   media.Encoder
	Foveation media.FoveationSource
}

// Pipeline is a bound reader/decoder/encoder triple sharing one codec
// context lineage.
type Pipeline struct {
	uid         string
	name        string
	capacity    int
	lagCapacity int

	routing Routing

	packets *PacketQueue // reader -> decoder
	frames  *FrameQueue  // decoder -> encoder
	out     *PacketQueue // encoder -> boundary
	lag     *LagQueue

	log Logger
}

// Option provides a way to set functional parameters to pipeline.
type Option func(p *Pipeline) error

// ErrInvalidRouting is returned if a mandatory collaborator is missing.
var ErrInvalidRouting = errors.New("invalid routing")

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// New creates a new pipeline and applies provided options. Queues are
// allocated here; stage goroutines start on Run.
func New(r Routing, options ...Option) (*Pipeline, error) {
	if r.Source == nil || r.Decoder == nil || r.Encoder == nil {
		return nil, ErrInvalidRouting
	}
	if r.Foveation == nil {
		r.Foveation = gaze.Static{
			X:      0.5,
			Y:      0.5,
			Spread: gaze.DefaultSpread,
			Offset: gaze.DefaultOffset,
		}
	}
	p := &Pipeline{
		uid:         newUID(),
		capacity:    defaultCapacity,
		lagCapacity: defaultLagCapacity,
		routing:     r,
		log:         log.Silent(),
	}
	for _, option := range options {
		err := option(p)
		if err != nil {
			return nil, err
		}
	}
	p.packets = queue.New[queue.Item[*media.Packet]](p.capacity)
	p.frames = queue.New[queue.Item[*media.Frame]](p.capacity)
	p.out = queue.New[queue.Item[*media.Packet]](outputCapacity)
	p.lag = queue.New[queue.Item[media.LagSample]](p.lagCapacity)
	return p, nil
}

// WithLogger sets logger to Pipeline. If this option is not provided,
// silent logger is used.
func WithLogger(logger Logger) Option {
	return func(p *Pipeline) error {
		p.log = logger
		return nil
	}
}

// WithName sets name to Pipeline.
func WithName(n string) Option {
	return func(p *Pipeline) error {
		p.name = n
		return nil
	}
}

// WithCapacity sets the capacity of the upstream queues. The encoder
// output queue stays at capacity 1 regardless.
func WithCapacity(capacity int) Option {
	return func(p *Pipeline) error {
		if capacity < 1 {
			return errors.New("capacity must be positive")
		}
		p.capacity = capacity
		return nil
	}
}

// WithLagCapacity sets the capacity of the lag sample queue.
func WithLagCapacity(capacity int) Option {
	return func(p *Pipeline) error {
		if capacity < 1 {
			return errors.New("lag capacity must be positive")
		}
		p.lagCapacity = capacity
		return nil
	}
}

// Packets returns the encoder output queue. The boundary consumer must
// drain it up to and including the end-of-stream marker.
func (p *Pipeline) Packets() *PacketQueue {
	return p.out
}

// Lag returns the lag sample queue, one sample per encoded frame,
// terminated by the end-of-stream marker.
func (p *Pipeline) Lag() *LagQueue {
	return p.lag
}

// Run starts the three stage goroutines and returns the handle to
// await them. The output queues must be drained concurrently,
// otherwise the capacity-1 output bound blocks the encoder forever.
func (p *Pipeline) Run() *Active {
	p.log.Debug("pipe ", p.uid, " run: ", p.name)
	reader := &readerRunner{
		source: p.routing.Source,
		out:    p.packets,
		log:    p.log,
	}
	decoder := &decoderRunner{
		decoder: p.routing.Decoder,
		in:      p.packets,
		out:     p.frames,
		log:     p.log,
	}
	encoder := &encoderRunner{
		encoder:   p.routing.Encoder,
		foveation: p.routing.Foveation,
		info:      p.routing.Decoder.Info(),
		in:        p.frames,
		out:       p.out,
		lag:       p.lag,
		log:       p.log,
	}

	merger := errorMerger{
		errorChan: make(chan error, 3),
	}
	merger.add(
		reader.run(p.uid, newUID()),
		decoder.run(p.uid, newUID()),
		encoder.run(p.uid, newUID()),
	)
	go merger.wait()
	return &Active{errc: merger.errorChan}
}

// Active is a handle to a running pipeline.
type Active struct {
	errc chan error
}

// Wait blocks until all stages have terminated and returns their
// combined fatal errors, nil after a clean sentinel shutdown.
func (a *Active) Wait() error {
	var errs execErrors
	for err := range a.errc {
		errs = append(errs, err)
	}
	return errs.ret()
}
