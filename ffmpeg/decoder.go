package ffmpeg

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"pipelined.dev/fovea/media"
)

// Decoder wraps an FFmpeg decode codec bound to one stream.
type Decoder struct {
	codecCtx *astiav.CodecContext
	info     media.StreamInfo
}

// NewDecoder opens a decoder for the source's selected stream. The
// resolved Info is the lineage the encoder initializes from.
func NewDecoder(src *Source) (*Decoder, error) {
	params := src.stream.CodecParameters()
	codec := astiav.FindDecoder(params.CodecID())
	if codec == nil {
		return nil, fmt.Errorf("ffmpeg: no decoder for %s", params.CodecID())
	}
	codecCtx := astiav.AllocCodecContext(codec)
	if codecCtx == nil {
		return nil, errors.New("ffmpeg: allocating codec context failed")
	}
	if err := params.ToCodecContext(codecCtx); err != nil {
		codecCtx.Free()
		return nil, fmt.Errorf("ffmpeg: applying stream parameters: %w", err)
	}
	codecCtx.SetTimeBase(src.stream.TimeBase())
	if err := codecCtx.Open(codec, nil); err != nil {
		codecCtx.Free()
		return nil, fmt.Errorf("ffmpeg: opening decoder: %w", err)
	}
	return &Decoder{
		codecCtx: codecCtx,
		info: media.StreamInfo{
			Index:    src.info.Index,
			Width:    codecCtx.Width(),
			Height:   codecCtx.Height(),
			TimeBase: rational(codecCtx.TimeBase()),
		},
	}, nil
}

// Info returns the resolved output parameters.
func (d *Decoder) Info() media.StreamInfo {
	return d.info
}

// Feed sends one compressed packet to the codec and releases it.
func (d *Decoder) Feed(p *media.Packet) error {
	pkt := p.Payload.(*astiav.Packet)
	defer pkt.Free()
	return sendError(d.codecCtx.SendPacket(pkt))
}

// Flush signals end of stream to the codec. Feeding afterwards
// violates the codec contract.
func (d *Decoder) Flush() error {
	return sendError(d.codecCtx.SendPacket(nil))
}

// Pull returns the next buffered frame, media.ErrMoreInput when the
// codec wants another packet and media.ErrDrained once flushed and
// empty.
func (d *Decoder) Pull() (*media.Frame, error) {
	frame := astiav.AllocFrame()
	if err := d.codecCtx.ReceiveFrame(frame); err != nil {
		frame.Free()
		return nil, receiveError(err)
	}
	return &media.Frame{
		Width:    frame.Width(),
		Height:   frame.Height(),
		PTS:      frame.Pts(),
		TimeBase: d.info.TimeBase,
		Payload:  frame,
	}, nil
}

// Close releases the codec.
func (d *Decoder) Close() error {
	d.codecCtx.Free()
	return nil
}

// sendError classifies codec feed results. EAGAIN from a send while
// receive also returns EAGAIN breaks the send/receive API contract.
func sendError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, astiav.ErrEagain):
		return errors.New("ffmpeg: API break: codec send and receive return EAGAIN")
	case errors.Is(err, astiav.ErrEof):
		return errors.New("ffmpeg: codec has already been flushed")
	default:
		return fmt.Errorf("ffmpeg: feeding codec: %w", err)
	}
}

// receiveError maps codec pull results to the feed/drain signals.
func receiveError(err error) error {
	switch {
	case errors.Is(err, astiav.ErrEagain):
		return media.ErrMoreInput
	case errors.Is(err, astiav.ErrEof):
		return media.ErrDrained
	default:
		return fmt.Errorf("ffmpeg: pulling codec output: %w", err)
	}
}
