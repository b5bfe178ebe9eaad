// Package mock provides mocks for pipeline collaborators and allows to
// execute integration tests without a media library.
package mock

import (
	"errors"
	"fmt"
	"io"
	"time"

	"pipelined.dev/fovea/media"
)

var defaultInfo = media.StreamInfo{
	Index:    0,
	Width:    640,
	Height:   480,
	TimeBase: media.Rational{Num: 1, Den: 25},
}

// Counter counts items passed through a mock.
type Counter struct {
	Packets int
	Frames  int
	Flushes int
	Closes  int
}

// Source mocks a media.Source. It produces Limit packets with
// increasing timestamps and returns io.EOF afterwards.
type Source struct {
	Counter
	Limit       int
	Interval    time.Duration
	ErrorOnRead error
	ErrorAfter  int // reads to succeed before ErrorOnRead fires
	Info_       *media.StreamInfo
}

// Info returns the mocked stream parameters.
func (m *Source) Info() media.StreamInfo {
	if m.Info_ != nil {
		return *m.Info_
	}
	return defaultInfo
}

// ReadPacket returns the next synthetic packet.
func (m *Source) ReadPacket() (*media.Packet, error) {
	if m.ErrorOnRead != nil && m.Packets >= m.ErrorAfter {
		return nil, m.ErrorOnRead
	}
	if m.Packets >= m.Limit {
		return nil, io.EOF
	}
	time.Sleep(m.Interval)
	pkt := &media.Packet{
		StreamIndex: m.Info().Index,
		PTS:         int64(m.Packets),
		DTS:         int64(m.Packets),
		TimeBase:    m.Info().TimeBase,
		Payload:     fmt.Sprintf("pkt-%d", m.Packets),
	}
	m.Packets++
	return pkt, nil
}

// Close implements media.Source.
func (m *Source) Close() error {
	m.Closes++
	return nil
}

// Decoder mocks a media.Decoder. Every fed packet yields
// FramesPerPacket frames. Delay frames are withheld in the internal
// buffer until flush, mimicking codec lookahead.
type Decoder struct {
	Counter
	FramesPerPacket int // defaults to 1
	Delay           int
	ErrorOnFeed     error
	ErrorOnPull     error
	Info_           *media.StreamInfo

	pending []*media.Frame
	flushed bool
}

// Info returns the resolved output parameters.
func (m *Decoder) Info() media.StreamInfo {
	if m.Info_ != nil {
		return *m.Info_
	}
	return defaultInfo
}

// Feed buffers frames decoded from the packet.
func (m *Decoder) Feed(pkt *media.Packet) error {
	if m.flushed {
		return errors.New("mock: decoder fed after flush")
	}
	if m.ErrorOnFeed != nil {
		return m.ErrorOnFeed
	}
	per := m.FramesPerPacket
	if per == 0 {
		per = 1
	}
	info := m.Info()
	for i := 0; i < per; i++ {
		m.pending = append(m.pending, &media.Frame{
			Width:    info.Width,
			Height:   info.Height,
			PTS:      pkt.PTS*int64(per) + int64(i),
			TimeBase: pkt.TimeBase,
			Payload:  pkt.Payload,
		})
	}
	m.Packets++
	return nil
}

// Flush signals end of stream to the decoder.
func (m *Decoder) Flush() error {
	if m.flushed {
		return errors.New("mock: decoder flushed twice")
	}
	m.flushed = true
	m.Flushes++
	return nil
}

// Pull returns the next buffered frame, ErrMoreInput while withholding
// Delay frames before flush and ErrDrained once flushed and empty.
func (m *Decoder) Pull() (*media.Frame, error) {
	if m.ErrorOnPull != nil {
		return nil, m.ErrorOnPull
	}
	withheld := m.Delay
	if m.flushed {
		withheld = 0
	}
	if len(m.pending) <= withheld {
		if m.flushed {
			return nil, media.ErrDrained
		}
		return nil, media.ErrMoreInput
	}
	f := m.pending[0]
	m.pending = m.pending[1:]
	m.Frames++
	return f, nil
}

// Close implements media.Decoder.
func (m *Decoder) Close() error {
	m.Closes++
	return nil
}

// Encoder mocks a media.Encoder. Every fed frame yields one packet.
// Descriptors records the foveation annotation of every fed frame.
type Encoder struct {
	Counter
	Delay       int
	ErrorOnFeed error
	ErrorOnPull error

	Descriptors []media.FoveationDescriptor

	pending []*media.Packet
	flushed bool
}

// Feed buffers a packet encoded from the frame.
func (m *Encoder) Feed(f *media.Frame) error {
	if m.flushed {
		return errors.New("mock: encoder fed after flush")
	}
	if m.ErrorOnFeed != nil {
		return m.ErrorOnFeed
	}
	if f.Foveation != nil {
		m.Descriptors = append(m.Descriptors, *f.Foveation)
	}
	m.pending = append(m.pending, &media.Packet{
		PTS:      f.PTS,
		DTS:      f.PTS,
		TimeBase: f.TimeBase,
		Payload:  f.Payload,
	})
	m.Frames++
	return nil
}

// Flush signals end of stream to the encoder.
func (m *Encoder) Flush() error {
	if m.flushed {
		return errors.New("mock: encoder flushed twice")
	}
	m.flushed = true
	m.Flushes++
	return nil
}

// Pull returns the next buffered packet, see Decoder.Pull.
func (m *Encoder) Pull() (*media.Packet, error) {
	if m.ErrorOnPull != nil {
		return nil, m.ErrorOnPull
	}
	withheld := m.Delay
	if m.flushed {
		withheld = 0
	}
	if len(m.pending) <= withheld {
		if m.flushed {
			return nil, media.ErrDrained
		}
		return nil, media.ErrMoreInput
	}
	pkt := m.pending[0]
	m.pending = m.pending[1:]
	m.Packets++
	return pkt, nil
}

// Close implements media.Encoder.
func (m *Encoder) Close() error {
	m.Closes++
	return nil
}

// Foveation mocks a media.FoveationSource with a fixed descriptor.
type Foveation struct {
	Samples int
	Value   media.FoveationDescriptor
}

// Sample returns the fixed descriptor and counts the call.
func (m *Foveation) Sample(width, height int) media.FoveationDescriptor {
	m.Samples++
	return m.Value
}
