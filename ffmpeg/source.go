package ffmpeg

import (
	"errors"
	"fmt"
	"io"

	"github.com/asticode/go-astiav"

	"pipelined.dev/fovea/media"
)

// Source demultiplexes a container input and supplies the packets of
// its video stream. Packets of other streams are discarded.
type Source struct {
	formatCtx *astiav.FormatContext
	stream    *astiav.Stream
	info      media.StreamInfo
}

// OpenSource opens the container at path and selects its video stream.
// The returned source resolves the StreamInfo the decoder derives its
// parameters from.
func OpenSource(path string) (*Source, error) {
	formatCtx := astiav.AllocFormatContext()
	if formatCtx == nil {
		return nil, errors.New("ffmpeg: allocating format context failed")
	}
	if err := formatCtx.OpenInput(path, nil, nil); err != nil {
		formatCtx.Free()
		return nil, fmt.Errorf("ffmpeg: opening %s: %w", path, err)
	}
	if err := formatCtx.FindStreamInfo(nil); err != nil {
		formatCtx.CloseInput()
		formatCtx.Free()
		return nil, fmt.Errorf("ffmpeg: finding stream info: %w", err)
	}

	var stream *astiav.Stream
	for _, s := range formatCtx.Streams() {
		if s.CodecParameters().MediaType() == astiav.MediaTypeVideo {
			stream = s
			break
		}
	}
	if stream == nil {
		formatCtx.CloseInput()
		formatCtx.Free()
		return nil, fmt.Errorf("ffmpeg: no video stream in %s", path)
	}

	return &Source{
		formatCtx: formatCtx,
		stream:    stream,
		info: media.StreamInfo{
			Index:    stream.Index(),
			Width:    stream.CodecParameters().Width(),
			Height:   stream.CodecParameters().Height(),
			TimeBase: rational(stream.TimeBase()),
		},
	}, nil
}

// Info returns the selected stream parameters.
func (s *Source) Info() media.StreamInfo {
	return s.info
}

// ReadPacket returns the next video packet, io.EOF at end of stream.
func (s *Source) ReadPacket() (*media.Packet, error) {
	for {
		pkt := astiav.AllocPacket()
		if err := s.formatCtx.ReadFrame(pkt); err != nil {
			pkt.Free()
			if errors.Is(err, astiav.ErrEof) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("ffmpeg: reading packet: %w", err)
		}
		// discard non-video packets such as audio or subtitles
		if pkt.StreamIndex() != s.info.Index {
			pkt.Free()
			continue
		}
		return &media.Packet{
			StreamIndex: s.info.Index,
			PTS:         pkt.Pts(),
			DTS:         pkt.Dts(),
			TimeBase:    s.info.TimeBase,
			Payload:     pkt,
		}, nil
	}
}

// Close releases the demuxer.
func (s *Source) Close() error {
	s.formatCtx.CloseInput()
	s.formatCtx.Free()
	return nil
}
