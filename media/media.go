// Package media defines the data units flowing through the transcoding
// pipeline and the contracts of the external codec collaborators.
package media

import (
	"errors"
	"time"
)

// Feed/drain signals returned by Decoder.Pull and Encoder.Pull. They
// are state machine transitions, not failures.
var (
	// ErrMoreInput means the codec buffered all pending output and
	// needs another input before it can produce more.
	ErrMoreInput = errors.New("media: codec needs more input")
	// ErrDrained means the codec was flushed and all buffered output
	// has been pulled.
	ErrDrained = errors.New("media: codec drained")
)

// Rational is an exact time base, Num/Den seconds per timestamp tick.
type Rational struct {
	Num int
	Den int
}

// Seconds converts a timestamp in this time base to seconds.
func (r Rational) Seconds(ts int64) float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(ts) * float64(r.Num) / float64(r.Den)
}

// StreamInfo describes the selected stream of a container source. The
// decoder derives its parameters from the reader's StreamInfo and the
// encoder derives its parameters from the decoder's. An encoder must
// not be initialized before its decoder's StreamInfo is final.
type StreamInfo struct {
	Index    int
	Width    int
	Height   int
	TimeBase Rational
}

// Packet is a compressed data unit. Payload is an opaque handle owned
// by the codec pair which produced and will consume it.
type Packet struct {
	StreamIndex int
	PTS         int64
	DTS         int64
	TimeBase    Rational
	Payload     any
}

// Frame is a decoded picture. Foveation is the typed annotation slot
// for the per-frame region-of-interest hint, attached by the encoder
// stage before the frame is fed to the codec.
type Frame struct {
	Width     int
	Height    int
	PTS       int64
	TimeBase  Rational
	Foveation *FoveationDescriptor
	Payload   any
}

// FoveationDescriptor is the per-frame region-of-interest hint. X and
// Y are normalized to [0,1] relative to the reference frame size.
// Spread widens the foveated region, Offset is the quality falloff
// outside of it.
type FoveationDescriptor struct {
	X      float64
	Y      float64
	Spread float64
	Offset float64
}

// LagSample is a monotonic timestamp captured at the moment a frame is
// handed to the encode step, not when the resulting packet emerges.
type LagSample struct {
	PTS int64
	At  time.Time
}

// Source supplies compressed packets from a container. ReadPacket
// returns io.EOF on end of stream, any other error is fatal for the
// pipeline.
type Source interface {
	Info() StreamInfo
	ReadPacket() (*Packet, error)
	Close() error
}

// Decoder is the feed/drain contract of an external decode codec bound
// to one stream. Pull returns buffered frames in feed order until it
// reports ErrMoreInput; after Flush it reports ErrDrained once all
// buffered output was pulled. Feeding after Flush violates the
// contract.
type Decoder interface {
	// Info returns the resolved output parameters, the lineage for
	// encoder initialization.
	Info() StreamInfo
	Feed(*Packet) error
	Flush() error
	Pull() (*Frame, error)
	Close() error
}

// Encoder mirrors Decoder with frames in and packets out.
type Encoder interface {
	Feed(*Frame) error
	Flush() error
	Pull() (*Packet, error)
	Close() error
}

// FoveationSource supplies a fresh descriptor per request. Sample is on
// the per-frame critical path and must return in bounded time.
type FoveationSource interface {
	Sample(width, height int) FoveationDescriptor
}
