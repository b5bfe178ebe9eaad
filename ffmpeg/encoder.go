package ffmpeg

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"pipelined.dev/fovea/media"
)

// Profile selects an encode codec and its fixed low-delay option set.
type Profile string

// Supported encoder profiles.
const (
	X264 Profile = "libx264"
	X265 Profile = "libx265"
)

// options returns the codec options of the profile: ultrafast
// zero-latency encoding with variance adaptive quantization and a
// short group of pictures.
func (p Profile) options() (map[string]string, error) {
	switch p {
	case X264:
		return map[string]string{
			"preset":  "ultrafast",
			"tune":    "zerolatency",
			"aq-mode": "1",
			"g":       "3",
		}, nil
	case X265:
		return map[string]string{
			"preset":      "ultrafast",
			"tune":        "zerolatency",
			"x265-params": "aq-mode=1",
			"g":           "3",
		}, nil
	}
	return nil, fmt.Errorf("ffmpeg: unsupported profile %q", p)
}

// Encoder wraps an FFmpeg encode codec.
//
// The typed foveation descriptor attached to fed frames stays on the
// media.Frame; mapping it onto codec region-of-interest side data
// depends on the codec build and is not attempted here.
type Encoder struct {
	codecCtx *astiav.CodecContext
	timeBase media.Rational
}

// NewEncoder opens an encoder deriving dimensions and time base from
// the decoder's resolved parameters. It must not be called before the
// decoder is open.
func NewEncoder(dec *Decoder, profile Profile) (*Encoder, error) {
	options, err := profile.options()
	if err != nil {
		return nil, err
	}
	codec := astiav.FindEncoderByName(string(profile))
	if codec == nil {
		return nil, fmt.Errorf("ffmpeg: encoder %q not found", profile)
	}
	codecCtx := astiav.AllocCodecContext(codec)
	if codecCtx == nil {
		return nil, errors.New("ffmpeg: allocating codec context failed")
	}

	info := dec.Info()
	codecCtx.SetWidth(info.Width)
	codecCtx.SetHeight(info.Height)
	codecCtx.SetTimeBase(avRational(info.TimeBase))
	codecCtx.SetPixelFormat(astiav.PixelFormatYuv420P)

	dict := astiav.NewDictionary()
	defer dict.Free()
	for k, v := range options {
		if err := dict.Set(k, v, astiav.NewDictionaryFlags()); err != nil {
			codecCtx.Free()
			return nil, fmt.Errorf("ffmpeg: setting option %s: %w", k, err)
		}
	}
	if err := codecCtx.Open(codec, dict); err != nil {
		codecCtx.Free()
		return nil, fmt.Errorf("ffmpeg: opening encoder: %w", err)
	}
	return &Encoder{
		codecCtx: codecCtx,
		timeBase: info.TimeBase,
	}, nil
}

// Feed sends one frame to the codec and releases it.
func (e *Encoder) Feed(f *media.Frame) error {
	frame := f.Payload.(*astiav.Frame)
	defer frame.Free()
	return sendError(e.codecCtx.SendFrame(frame))
}

// Flush signals end of stream to the codec.
func (e *Encoder) Flush() error {
	return sendError(e.codecCtx.SendFrame(nil))
}

// Pull returns the next encoded packet, see Decoder.Pull.
func (e *Encoder) Pull() (*media.Packet, error) {
	pkt := astiav.AllocPacket()
	if err := e.codecCtx.ReceivePacket(pkt); err != nil {
		pkt.Free()
		return nil, receiveError(err)
	}
	return &media.Packet{
		PTS:      pkt.Pts(),
		DTS:      pkt.Dts(),
		TimeBase: e.timeBase,
		Payload:  pkt,
	}, nil
}

// Close releases the codec.
func (e *Encoder) Close() error {
	e.codecCtx.Free()
	return nil
}
