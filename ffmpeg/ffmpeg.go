// Package ffmpeg binds the pipeline collaborator contracts to FFmpeg
// through github.com/asticode/go-astiav: container demuxing, decoding,
// low-delay encoding and muxing of the transcoded stream.
//
// All packet and frame payloads flowing out of this package are owned
// astiav handles. Whoever extracts them from a queue frees them: the
// decoder frees fed packets, the encoder frees fed frames, the writer
// frees muxed packets.
package ffmpeg

import (
	"github.com/asticode/go-astiav"

	"pipelined.dev/fovea/media"
)

func rational(r astiav.Rational) media.Rational {
	return media.Rational{Num: r.Num(), Den: r.Den()}
}

func avRational(r media.Rational) astiav.Rational {
	return astiav.NewRational(r.Num, r.Den)
}
