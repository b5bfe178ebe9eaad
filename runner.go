package fovea

import (
	"errors"
	"fmt"
	"io"
	"time"

	"pipelined.dev/fovea/media"
	"pipelined.dev/fovea/metric"
	"pipelined.dev/fovea/queue"
)

// readerRunner is the single-pump stage: it reads one packet per
// iteration and terminates on end of stream, appending the marker
// exactly once.
type readerRunner struct {
	source media.Source
	out    *PacketQueue
	log    Logger
}

func (r *readerRunner) run(pipeID, componentID string) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		// the marker is appended on every exit path so downstream
		// stages always terminate.
		defer r.out.Append(queue.End[*media.Packet]())
		if err := r.loop(); err != nil {
			errc <- fmt.Errorf("reader %s: %w", componentID, err)
			return
		}
		if err := r.source.Close(); err != nil {
			errc <- fmt.Errorf("reader %s: error closing source: %w", componentID, err)
		}
		r.log.Debug("pipe ", pipeID, " reader done")
	}()
	return errc
}

func (r *readerRunner) loop() error {
	measure := metric.Meter(r.source)()
	for {
		pkt, err := r.source.ReadPacket()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// source errors are fatal for the whole pipeline, no
			// partial-result recovery is attempted.
			return fmt.Errorf("error reading source: %w", err)
		}
		r.out.Append(queue.Some(pkt))
		measure(1)
	}
}

// drainUntilEnd discards queued items up to and including the
// end-of-stream marker. A stage failing before it saw the marker keeps
// its producer unblocked this way: the producer appends the marker on
// every exit path, so the drain terminates.
func drainUntilEnd[T any](q *queue.Queue[queue.Item[T]]) {
	for {
		if _, ok := q.Extract().Get(); !ok {
			return
		}
	}
}

// decoderRunner is a feed/drain stage: pull buffered output first,
// feed input only when the codec asks for it, flush exactly once when
// the upstream marker arrives.
type decoderRunner struct {
	decoder media.Decoder
	in      *PacketQueue
	out     *FrameQueue
	log     Logger

	sawEnd bool
}

func (d *decoderRunner) run(pipeID, componentID string) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer d.out.Append(queue.End[*media.Frame]())
		if err := d.loop(); err != nil {
			if !d.sawEnd {
				drainUntilEnd(d.in)
			}
			errc <- fmt.Errorf("decoder %s: %w", componentID, err)
			return
		}
		if err := d.decoder.Close(); err != nil {
			errc <- fmt.Errorf("decoder %s: error closing codec: %w", componentID, err)
		}
		d.log.Debug("pipe ", pipeID, " decoder done")
	}()
	return errc
}

func (d *decoderRunner) loop() error {
	measure := metric.Meter(d.decoder)()
	flushed := false
	for {
		frame, err := d.decoder.Pull()
		switch {
		case err == nil:
			d.out.Append(queue.Some(frame))
			measure(1)
		case errors.Is(err, media.ErrMoreInput):
			if flushed {
				// the codec must never ask for input after flush.
				return errors.New("codec requested input after flush")
			}
			pkt, ok := d.in.Extract().Get()
			if !ok {
				d.sawEnd = true
				if err := d.decoder.Flush(); err != nil {
					return fmt.Errorf("error flushing codec: %w", err)
				}
				flushed = true
				continue
			}
			if err := d.decoder.Feed(pkt); err != nil {
				return fmt.Errorf("error feeding codec: %w", err)
			}
		case errors.Is(err, media.ErrDrained):
			return nil
		default:
			return fmt.Errorf("error pulling frame: %w", err)
		}
	}
}

// encoderRunner is the feed/drain stage with the foveation and lag
// side channels attached.
type encoderRunner struct {
	encoder   media.Encoder
	foveation media.FoveationSource
	info      media.StreamInfo
	in        *FrameQueue
	out       *PacketQueue
	lag       *LagQueue
	log       Logger

	// now is the monotonic clock for lag samples.
	now func() time.Time

	sawEnd bool
}

func (e *encoderRunner) run(pipeID, componentID string) <-chan error {
	errc := make(chan error, 1)
	if e.now == nil {
		e.now = time.Now
	}
	go func() {
		defer close(errc)
		defer func() {
			e.out.Append(queue.End[*media.Packet]())
			e.lag.Append(queue.End[media.LagSample]())
		}()
		if err := e.loop(); err != nil {
			if !e.sawEnd {
				drainUntilEnd(e.in)
			}
			errc <- fmt.Errorf("encoder %s: %w", componentID, err)
			return
		}
		if err := e.encoder.Close(); err != nil {
			errc <- fmt.Errorf("encoder %s: error closing codec: %w", componentID, err)
		}
		e.log.Debug("pipe ", pipeID, " encoder done")
	}()
	return errc
}

func (e *encoderRunner) loop() error {
	measure := metric.Meter(e.encoder)()
	flushed := false
	for {
		pkt, err := e.encoder.Pull()
		switch {
		case err == nil:
			e.out.Append(queue.Some(pkt))
			measure(1)
		case errors.Is(err, media.ErrMoreInput):
			if flushed {
				return errors.New("codec requested input after flush")
			}
			frame, ok := e.in.Extract().Get()
			if !ok {
				e.sawEnd = true
				if err := e.encoder.Flush(); err != nil {
					return fmt.Errorf("error flushing codec: %w", err)
				}
				flushed = true
				continue
			}
			// every frame gets a fresh descriptor before it reaches
			// the codec and a lag timestamp right after.
			descriptor := e.foveation.Sample(e.info.Width, e.info.Height)
			frame.Foveation = &descriptor
			if err := e.encoder.Feed(frame); err != nil {
				return fmt.Errorf("error feeding codec: %w", err)
			}
			e.lag.Append(queue.Some(media.LagSample{
				PTS: frame.PTS,
				At:  e.now(),
			}))
		case errors.Is(err, media.ErrDrained):
			return nil
		default:
			return fmt.Errorf("error pulling packet: %w", err)
		}
	}
}
