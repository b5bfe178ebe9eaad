package media_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/fovea/media"
)

func TestRationalSeconds(t *testing.T) {
	tests := []struct {
		tb       media.Rational
		ts       int64
		expected float64
	}{
		{
			tb:       media.Rational{Num: 1, Den: 25},
			ts:       50,
			expected: 2,
		},
		{
			tb:       media.Rational{Num: 1, Den: 90000},
			ts:       90000,
			expected: 1,
		},
		{
			tb:       media.Rational{},
			ts:       100,
			expected: 0,
		},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.tb.Seconds(test.ts))
	}
}
