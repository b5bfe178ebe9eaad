package ffmpeg

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"pipelined.dev/fovea/media"
	"pipelined.dev/fovea/queue"
)

// Writer muxes encoded packets into an output container. It is the
// boundary consumer of the pipeline's output queue.
type Writer struct {
	formatCtx *astiav.FormatContext
	ioCtx     *astiav.IOContext
	stream    *astiav.Stream
}

// NewWriter creates an output container at path with a single stream
// carrying the encoder's parameters and writes the header.
func NewWriter(path string, enc *Encoder) (*Writer, error) {
	formatCtx, err := astiav.AllocOutputFormatContext(nil, "", path)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: allocating output context: %w", err)
	}
	stream := formatCtx.NewStream(nil)
	if stream == nil {
		formatCtx.Free()
		return nil, errors.New("ffmpeg: allocating output stream failed")
	}
	if err := stream.CodecParameters().FromCodecContext(enc.codecCtx); err != nil {
		formatCtx.Free()
		return nil, fmt.Errorf("ffmpeg: copying codec parameters: %w", err)
	}
	stream.SetTimeBase(enc.codecCtx.TimeBase())

	ioCtx, err := astiav.OpenIOContext(path, astiav.NewIOContextFlags(astiav.IOContextFlagWrite))
	if err != nil {
		formatCtx.Free()
		return nil, fmt.Errorf("ffmpeg: opening %s: %w", path, err)
	}
	formatCtx.SetPb(ioCtx)

	if err := formatCtx.WriteHeader(nil); err != nil {
		ioCtx.Close()
		formatCtx.Free()
		return nil, fmt.Errorf("ffmpeg: writing header: %w", err)
	}
	return &Writer{
		formatCtx: formatCtx,
		ioCtx:     ioCtx,
		stream:    stream,
	}, nil
}

// WritePacket muxes one packet and releases it.
func (w *Writer) WritePacket(p *media.Packet) error {
	pkt := p.Payload.(*astiav.Packet)
	defer pkt.Free()
	pkt.SetStreamIndex(w.stream.Index())
	pkt.RescaleTs(avRational(p.TimeBase), w.stream.TimeBase())
	if err := w.formatCtx.WriteInterleavedFrame(pkt); err != nil {
		return fmt.Errorf("ffmpeg: writing packet: %w", err)
	}
	return nil
}

// Drain consumes the queue up to and including the end-of-stream
// marker, muxing every packet.
func (w *Writer) Drain(out *queue.Queue[queue.Item[*media.Packet]]) error {
	for {
		pkt, ok := out.Extract().Get()
		if !ok {
			return nil
		}
		if err := w.WritePacket(pkt); err != nil {
			return err
		}
	}
}

// Discard consumes the queue up to and including the end-of-stream
// marker, releasing every packet without muxing it. It keeps the
// pipeline terminating after a write failure.
func Discard(out *queue.Queue[queue.Item[*media.Packet]]) {
	for {
		pkt, ok := out.Extract().Get()
		if !ok {
			return
		}
		pkt.Payload.(*astiav.Packet).Free()
	}
}

// Close writes the trailer and releases the muxer.
func (w *Writer) Close() error {
	var errs []error
	if err := w.formatCtx.WriteTrailer(); err != nil {
		errs = append(errs, fmt.Errorf("ffmpeg: writing trailer: %w", err))
	}
	if err := w.ioCtx.Close(); err != nil {
		errs = append(errs, fmt.Errorf("ffmpeg: closing output: %w", err))
	}
	w.formatCtx.Free()
	return errors.Join(errs...)
}
