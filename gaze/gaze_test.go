package gaze_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/fovea/gaze"
	"pipelined.dev/fovea/media"
)

func TestPointer(t *testing.T) {
	tests := []struct {
		x, y          int
		width, height int
		expectedX     float64
		expectedY     float64
	}{
		{
			x:     320,
			y:     240,
			width: 640, height: 480,
			expectedX: 0.5,
			expectedY: 0.5,
		},
		{
			x:     0,
			y:     480,
			width: 640, height: 480,
			expectedX: 0,
			expectedY: 1,
		},
		{
			// positions outside the frame are clamped
			x:     -100,
			y:     1000,
			width: 640, height: 480,
			expectedX: 0,
			expectedY: 1,
		},
	}
	for _, test := range tests {
		p := gaze.Pointer{
			Position: func() (int, int) { return test.x, test.y },
		}
		d := p.Sample(test.width, test.height)
		assert.Equal(t, test.expectedX, d.X)
		assert.Equal(t, test.expectedY, d.Y)
		assert.Equal(t, gaze.DefaultSpread, d.Spread)
		assert.Equal(t, gaze.DefaultOffset, d.Offset)
	}
}

func TestStatic(t *testing.T) {
	s := gaze.Static{X: 0.25, Y: 0.75, Spread: 1.5, Offset: 20}
	d := s.Sample(1920, 1080)
	assert.Equal(t, media.FoveationDescriptor{X: 0.25, Y: 0.75, Spread: 1.5, Offset: 20}, d)
}

func TestClamp(t *testing.T) {
	l := gaze.X264Limits()
	d := l.Clamp(media.FoveationDescriptor{X: 1.5, Y: -0.5, Spread: 3, Offset: 60})
	assert.Equal(t, media.FoveationDescriptor{X: 1, Y: 0, Spread: 2, Offset: 51}, d)
}

func TestFunc(t *testing.T) {
	var calls int
	fn := gaze.Func(func(w, h int) media.FoveationDescriptor {
		calls++
		return media.FoveationDescriptor{X: 0.5, Y: 0.5}
	})
	_ = fn.Sample(10, 10)
	assert.Equal(t, 1, calls)
}
