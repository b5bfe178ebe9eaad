package fovea

import (
	"strings"
	"sync"
)

// errorMerger allows to listen to multiple error channels.
type errorMerger struct {
	wg        sync.WaitGroup
	errorChan chan error
}

// add error channels from all stages into one.
func (m *errorMerger) add(errcList ...<-chan error) {
	// function to wait for error channel
	m.wg.Add(len(errcList))
	for _, ec := range errcList {
		go m.listen(ec)
	}
}

// listen blocks until error is received or channel is closed.
func (m *errorMerger) listen(ec <-chan error) {
	if err, ok := <-ec; ok {
		m.errorChan <- err
	}
	m.wg.Done()
}

// wait waits for all underlying error channels to be closed and then
// closes the output error channel.
func (m *errorMerger) wait() {
	m.wg.Wait()
	close(m.errorChan)
}

// execErrors wraps errors that might occure when multiple stages
// are failing.
type execErrors []error

func (e execErrors) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

// Unwrap makes wrapped errors visible to errors.Is.
func (e execErrors) Unwrap() []error {
	return e
}

// ret returns untyped nil if error is list is empty.
func (e execErrors) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
