package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s *Stream) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out draining stream")
		}
	}
}

func TestRun_EmitsEndEventLast(t *testing.T) {
	s := New(context.Background())
	s.Run(func(ctx context.Context) error {
		require.NoError(t, s.PublishChunk("hello"))
		require.NoError(t, s.PublishProgress(30))
		return nil
	})

	events := collect(t, s)
	require.Len(t, events, 3)
	assert.Equal(t, EventChunk, events[0].Type)
	assert.Equal(t, EventProgress, events[1].Type)
	assert.Equal(t, EventEnd, events[2].Type)
	assert.Equal(t, EndData, events[2].Data)
}

func TestRun_ErrorProducesErrorEventThenEnd(t *testing.T) {
	s := New(context.Background())
	s.Run(func(ctx context.Context) error {
		return errors.New("model unavailable")
	})

	events := collect(t, s)
	require.Len(t, events, 2)
	assert.Equal(t, EventError, events[0].Type)
	assert.Equal(t, "model unavailable", events[0].Data)
	assert.Equal(t, EventEnd, events[1].Type)
}

func TestRun_EndEmittedExactlyOnce(t *testing.T) {
	s := New(context.Background())
	s.Run(func(ctx context.Context) error {
		return nil
	})

	events := collect(t, s)
	endCount := 0
	for _, ev := range events {
		if ev.Type == EventEnd {
			endCount++
		}
	}
	assert.Equal(t, 1, endCount)
}

func TestCancel_StopsPublishing(t *testing.T) {
	s := New(context.Background())

	started := make(chan struct{})
	result := make(chan error, 1)
	s.Run(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		result <- s.PublishChunk("after cancel")
		return ctx.Err()
	})

	<-started
	s.Cancel()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrStreamClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not observe cancellation")
	}

	// Cancellation is not an error condition, no error event expected
	events := collect(t, s)
	for _, ev := range events {
		assert.NotEqual(t, EventError, ev.Type)
	}
}

func TestPublish_AfterFinishReturnsClosed(t *testing.T) {
	s := New(context.Background())
	s.Run(func(ctx context.Context) error {
		return nil
	})
	collect(t, s)

	assert.ErrorIs(t, s.PublishStatus("late"), ErrStreamClosed)
}

func TestPublishNodeComplete_Shape(t *testing.T) {
	s := New(context.Background())
	s.Run(func(ctx context.Context) error {
		return s.PublishNodeComplete("evaluation", map[string]interface{}{"score": 9})
	})

	events := collect(t, s)
	require.Len(t, events, 2)
	payload, ok := events[0].Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "evaluation", payload["node"])
	assert.Contains(t, payload, "result")
}
