package fovea_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/goleak"

	"pipelined.dev/fovea"
	"pipelined.dev/fovea/gaze"
	"pipelined.dev/fovea/media"
	"pipelined.dev/fovea/mock"
)

// drain consumes the boundary queues until their end-of-stream markers
// arrive and returns everything extracted.
func drain(t *testing.T, p *fovea.Pipeline) ([]*media.Packet, []media.LagSample) {
	t.Helper()
	var (
		packets []*media.Packet
		lags    []media.LagSample
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			sample, ok := p.Lag().Extract().Get()
			if !ok {
				return
			}
			lags = append(lags, sample)
		}
	}()
	for {
		pkt, ok := p.Packets().Extract().Get()
		if !ok {
			break
		}
		packets = append(packets, pkt)
	}
	<-done
	return packets, lags
}

func TestPipeline(t *testing.T) {
	defer goleak.VerifyNone(t)
	const packets = 5

	source := &mock.Source{Limit: packets}
	decoder := &mock.Decoder{}
	encoder := &mock.Encoder{}
	foveation := &mock.Foveation{
		Value: media.FoveationDescriptor{X: 0.5, Y: 0.5, Spread: 1, Offset: 10},
	}

	p, err := fovea.New(fovea.Routing{
		Source:    source,
		Decoder:   decoder,
		Encoder:   encoder,
		Foveation: foveation,
	}, fovea.WithName("pipeline test"))
	assertNil(t, "error", err)

	a := p.Run()
	out, lags := drain(t, p)
	assertNil(t, "error", a.Wait())

	assertEqual(t, "packets", len(out), packets)
	assertEqual(t, "lag samples", len(lags), packets)
	assertEqual(t, "samples requested", foveation.Samples, packets)
	assertEqual(t, "descriptors", len(encoder.Descriptors), packets)
	assertEqual(t, "flushes", decoder.Flushes, 1)
	assertEqual(t, "flushes", encoder.Flushes, 1)
	assertEqual(t, "source closed", source.Closes, 1)

	// FIFO order is preserved end to end.
	for i, pkt := range out {
		assertEqual(t, "pts", pkt.PTS, int64(i))
	}
	// lag timestamps are monotonically non-decreasing.
	for i := 1; i < len(lags); i++ {
		if lags[i].At.Before(lags[i-1].At) {
			t.Fatalf("lag timestamps not monotonic:\n%s", spew.Sdump(lags))
		}
	}
	// every descriptor lies in the unit square.
	for _, d := range encoder.Descriptors {
		if d.X < 0 || d.X > 1 || d.Y < 0 || d.Y > 1 {
			t.Fatalf("descriptor out of range: %+v", d)
		}
	}
}

// A packet may decode into several buffered frames; they must all be
// emitted, in order, before the next input is requested.
func TestDecoderBuffering(t *testing.T) {
	defer goleak.VerifyNone(t)
	const (
		packets         = 5
		framesPerPacket = 3
	)

	decoder := &mock.Decoder{
		FramesPerPacket: framesPerPacket,
		Delay:           2,
	}
	encoder := &mock.Encoder{Delay: 1}
	p, err := fovea.New(fovea.Routing{
		Source:  &mock.Source{Limit: packets},
		Decoder: decoder,
		Encoder: encoder,
	})
	assertNil(t, "error", err)

	a := p.Run()
	out, lags := drain(t, p)
	assertNil(t, "error", a.Wait())

	assertEqual(t, "packets", len(out), packets*framesPerPacket)
	assertEqual(t, "lag samples", len(lags), packets*framesPerPacket)
	for i, pkt := range out {
		assertEqual(t, "pts", pkt.PTS, int64(i))
	}
}

// An empty source still propagates exactly one marker through every
// stage.
func TestEmptySource(t *testing.T) {
	defer goleak.VerifyNone(t)

	decoder := &mock.Decoder{}
	encoder := &mock.Encoder{}
	p, err := fovea.New(fovea.Routing{
		Source:  &mock.Source{Limit: 0},
		Decoder: decoder,
		Encoder: encoder,
	})
	assertNil(t, "error", err)

	a := p.Run()
	out, lags := drain(t, p)
	assertNil(t, "error", a.Wait())

	assertEqual(t, "packets", len(out), 0)
	assertEqual(t, "lag samples", len(lags), 0)
	assertEqual(t, "flushes", decoder.Flushes, 1)
	assertEqual(t, "flushes", encoder.Flushes, 1)
}

// A mid-stream source failure is fatal: the error surfaces from Wait
// and every stage still terminates through the marker.
func TestSourceError(t *testing.T) {
	defer goleak.VerifyNone(t)
	errRead := errors.New("read failed")

	p, err := fovea.New(fovea.Routing{
		Source: &mock.Source{
			Limit:       10,
			ErrorOnRead: errRead,
			ErrorAfter:  2,
		},
		Decoder: &mock.Decoder{},
		Encoder: &mock.Encoder{},
	})
	assertNil(t, "error", err)

	a := p.Run()
	out, _ := drain(t, p)
	err = a.Wait()
	if !errors.Is(err, errRead) {
		t.Fatalf("expected read error, got: %v", err)
	}
	// the two packets read before the failure still flow through.
	assertEqual(t, "packets", len(out), 2)
}

func TestCodecError(t *testing.T) {
	defer goleak.VerifyNone(t)
	errPull := errors.New("pull failed")

	p, err := fovea.New(fovea.Routing{
		Source:  &mock.Source{Limit: 3},
		Decoder: &mock.Decoder{ErrorOnPull: errPull},
		Encoder: &mock.Encoder{},
	})
	assertNil(t, "error", err)

	a := p.Run()
	drain(t, p)
	err = a.Wait()
	if !errors.Is(err, errPull) {
		t.Fatalf("expected pull error, got: %v", err)
	}
}

func TestFoveationSource(t *testing.T) {
	defer goleak.VerifyNone(t)

	encoder := &mock.Encoder{}
	p, err := fovea.New(fovea.Routing{
		Source:  &mock.Source{Limit: 4},
		Decoder: &mock.Decoder{},
		Encoder: encoder,
		Foveation: gaze.Pointer{
			Position: func() (int, int) { return 320, 120 },
		},
	})
	assertNil(t, "error", err)

	a := p.Run()
	drain(t, p)
	assertNil(t, "error", a.Wait())

	assertEqual(t, "descriptors", len(encoder.Descriptors), 4)
	for _, d := range encoder.Descriptors {
		assertEqual(t, "x", d.X, 0.5)
		assertEqual(t, "y", d.Y, 0.25)
		assertEqual(t, "spread", d.Spread, gaze.DefaultSpread)
		assertEqual(t, "offset", d.Offset, gaze.DefaultOffset)
	}
}

func TestInvalidRouting(t *testing.T) {
	tests := []fovea.Routing{
		{},
		{Source: &mock.Source{}},
		{Source: &mock.Source{}, Decoder: &mock.Decoder{}},
		{Decoder: &mock.Decoder{}, Encoder: &mock.Encoder{}},
	}
	for _, routing := range tests {
		_, err := fovea.New(routing)
		if !errors.Is(err, fovea.ErrInvalidRouting) {
			t.Fatalf("expected routing error, got: %v", err)
		}
	}
}

func TestInvalidOptions(t *testing.T) {
	routing := fovea.Routing{
		Source:  &mock.Source{},
		Decoder: &mock.Decoder{},
		Encoder: &mock.Encoder{},
	}
	if _, err := fovea.New(routing, fovea.WithCapacity(0)); err == nil {
		t.Fatal("expected capacity error")
	}
	if _, err := fovea.New(routing, fovea.WithLagCapacity(-1)); err == nil {
		t.Fatal("expected lag capacity error")
	}
}

func assertNil(t *testing.T, name string, result interface{}) {
	t.Helper()
	if result != nil && !reflect.ValueOf(result).IsNil() {
		t.Fatalf("%v\nresult: \t%T\t%+v \nexpected: \tnil", name, result, result)
	}
}

func assertEqual(t *testing.T, name string, result, expected interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, result) {
		t.Fatalf("%v\nresult: \t%T\t%+v \nexpected: \t%T\t%+v", name, result, result, expected, expected)
	}
}
