package stream

import (
	"context"
	"errors"
	"sync"
)

// Event types emitted over a run stream.
const (
	EventChunk        = "chunk"
	EventNodeComplete = "node_complete"
	EventProgress     = "progress"
	EventStatus       = "status"
	EventError        = "error"
	EventEnd          = "end"
)

// EndData is the payload of the terminal event.
const EndData = "complete"

// Event is a single message on a run stream.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ErrStreamClosed is returned by Publish after the stream is canceled or
// its producer has finished.
var ErrStreamClosed = errors.New("stream closed")

const defaultBuffer = 64

// Stream is a single-producer event channel scoped to one workflow run.
// The producer side is driven through Run, which guarantees exactly one
// end event as the final message regardless of how the producer exits.
type Stream struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// New creates a stream whose lifetime is bound to parent. Canceling the
// parent context cancels the stream.
func New(parent context.Context) *Stream {
	ctx, cancel := context.WithCancel(parent)
	return &Stream{
		ch:     make(chan Event, defaultBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the run-scoped context. Producers must pass it to every
// blocking call so cancellation propagates.
func (s *Stream) Context() context.Context {
	return s.ctx
}

// Events returns the consumer side of the stream. The channel is closed
// after the end event.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Cancel aborts the run. Safe to call multiple times and from any
// goroutine, typically on consumer disconnect.
func (s *Stream) Cancel() {
	s.cancel()
}

// Publish delivers an event to the consumer. It blocks when the buffer is
// full and returns ErrStreamClosed once the stream is canceled or finished.
func (s *Stream) Publish(event Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStreamClosed
	}
	s.mu.Unlock()

	select {
	case s.ch <- event:
		return nil
	case <-s.ctx.Done():
		return ErrStreamClosed
	}
}

func (s *Stream) PublishChunk(text string) error {
	return s.Publish(Event{Type: EventChunk, Data: map[string]interface{}{"text": text}})
}

func (s *Stream) PublishProgress(percent int) error {
	return s.Publish(Event{Type: EventProgress, Data: percent})
}

func (s *Stream) PublishStatus(message string) error {
	return s.Publish(Event{Type: EventStatus, Data: message})
}

func (s *Stream) PublishNodeComplete(node string, output interface{}) error {
	return s.Publish(Event{Type: EventNodeComplete, Data: map[string]interface{}{
		"node":   node,
		"result": output,
	}})
}

// Run executes the producer in a new goroutine. A non-nil error from fn is
// surfaced as an error event. The end event is always emitted afterwards
// and the channel closed, so consumers can range until closure.
func (s *Stream) Run(fn func(ctx context.Context) error) {
	go func() {
		err := fn(s.ctx)

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		// Cancellation is a distinct outcome, not an error
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, ErrStreamClosed) {
			s.trySend(Event{Type: EventError, Data: err.Error()})
		}
		s.trySend(Event{Type: EventEnd, Data: EndData})

		s.cancel()
		close(s.ch)
	}()
}

// trySend delivers terminal events without blocking forever. When the
// consumer is gone and the buffer is full the event is dropped, nobody is
// listening anymore.
func (s *Stream) trySend(event Event) {
	select {
	case s.ch <- event:
	default:
		select {
		case s.ch <- event:
		case <-s.ctx.Done():
		}
	}
}
