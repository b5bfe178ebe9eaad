package metric_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/fovea/metric"
)

func TestMeter(t *testing.T) {
	pint := 1
	// test cases
	var tests = []struct {
		component          interface{}
		routines           int
		items              int
		expectedItems      string
		expectedComponents string
	}{
		{
			component:          int(1),
			routines:           2,
			items:              10,
			expectedItems:      "20",
			expectedComponents: "2",
		},
		{
			component:          &pint,
			routines:           2,
			items:              10,
			expectedItems:      "40",
			expectedComponents: "4",
		},
	}
	// function to test meter.
	testFn := func(reset metric.ResetFunc, wg *sync.WaitGroup, items int) {
		measure := reset()
		for i := 0; i < items; i++ {
			measure(1)
		}
		wg.Done()
	}

	for _, c := range tests {
		wg := &sync.WaitGroup{}
		wg.Add(c.routines)
		for i := 0; i < c.routines; i++ {
			go testFn(metric.Meter(c.component), wg, c.items)
		}
		// check if no data race.
		wg.Wait()
		values := metric.Get(c.component)
		assert.Equal(t, c.expectedItems, values[metric.ItemCounter])
		assert.Equal(t, c.expectedComponents, values[metric.ComponentCounter])
	}
}
