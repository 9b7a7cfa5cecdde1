package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidestep/internal/domain/entities"
)

func startLoop(t *testing.T) *EventLoop {
	t.Helper()
	loop := NewEventLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		loop.Stop()
	})
	return loop
}

func TestEventLoop_RunsTasksInOrder(t *testing.T) {
	loop := startLoop(t)

	var got []int
	for i := 0; i < 50; i++ {
		i := i
		require.True(t, loop.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, loop.Call(context.Background(), func() {}))

	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestEventLoop_SerializesConcurrentPosts(t *testing.T) {
	loop := startLoop(t)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = loop.Call(context.Background(), func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var final int
	require.NoError(t, loop.Call(context.Background(), func() { final = counter }))
	assert.Equal(t, 2000, final)
}

func TestEventLoop_AfterFunc(t *testing.T) {
	t.Run("fires on the loop", func(t *testing.T) {
		loop := startLoop(t)
		fired := make(chan struct{})

		loop.AfterFunc(5*time.Millisecond, func() { close(fired) })

		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatal("timer did not fire")
		}
	})

	t.Run("stop prevents the callback", func(t *testing.T) {
		loop := startLoop(t)
		called := make(chan struct{}, 1)

		timer := loop.AfterFunc(20*time.Millisecond, func() { called <- struct{}{} })
		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, called)
	})

	t.Run("stop after firing returns false", func(t *testing.T) {
		loop := startLoop(t)
		fired := make(chan struct{})

		timer := loop.AfterFunc(time.Millisecond, func() { close(fired) })
		<-fired
		assert.False(t, timer.Stop())
	})
}

func TestEventLoop_Stop(t *testing.T) {
	loop := NewEventLoop(nil)
	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	require.NoError(t, loop.Call(context.Background(), func() {}))
	loop.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	assert.False(t, loop.Post(func() {}))
	assert.ErrorIs(t, loop.Call(context.Background(), func() {}), entities.ErrClosed)
}

func TestEventLoop_ContextCancel(t *testing.T) {
	loop := NewEventLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	<-loop.Done()
}

func TestEventLoop_RecoversFromPanics(t *testing.T) {
	loop := startLoop(t)

	loop.Post(func() { panic("boom") })

	ran := false
	require.NoError(t, loop.Call(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}
