/*
Package fovea builds and executes real-time foveated transcoding
pipelines.

Concept

A pipeline reads compressed packets from a container source, decodes
them, annotates every frame with a foveation descriptor and re-encodes
the stream for low-latency delivery. It has exactly three stages:

    Reader - produces compressed packets from the source;
    Decoder - turns packets into frames;
    Encoder - annotates frames and turns them back into packets.

Every stage runs in its own goroutine. Stages share no state; they are
linked only by bounded blocking queues, so a stage blocked on a full
queue is throttled by its consumer and a stage blocked on an empty
queue idles until upstream produces. The encoder output queue has
capacity 1: the encoder stalls instead of buffering ahead, which
bounds the worst-case end-to-end latency.

Termination

End of stream propagates as an explicit marker through the queues.
When the source is exhausted, the reader appends the marker as its
final item; each downstream stage flushes its codec, drains buffered
output and appends the marker to its own outputs exactly once. There
is no other in-pipeline cancellation: a fatal stage error also emits
the marker so downstream stages terminate, and the error surfaces from
Active.Wait.

Side channel

For every frame the encoder stage requests a fresh descriptor from the
foveation source and attaches it before feeding the codec. Right after
feeding it appends a monotonic timestamp to the lag queue, which
measures encode-path latency per frame.

Execution

	p, err := fovea.New(fovea.Routing{
		Source:  src,
		Decoder: dec,
		Encoder: enc,
	})
	if err != nil {
		// handle
	}
	a := p.Run()
	// drain p.Packets() and p.Lag() concurrently
	err = a.Wait()
*/
package fovea
