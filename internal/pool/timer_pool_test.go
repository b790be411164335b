package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerPool(t *testing.T) {
	assert := assert.New(t)

	t.Run("Get and Put", func(t *testing.T) {
		timer1 := GetTimer(50 * time.Millisecond)
		assert.NotNil(timer1)

		PutTimer(timer1)

		timer2 := GetTimer(20 * time.Millisecond)
		assert.NotNil(timer2)

		<-timer2.C
	})

	t.Run("Put Active Timer", func(t *testing.T) {
		timer1 := GetTimer(100 * time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		PutTimer(timer1)

		begin := time.Now()
		timer2 := GetTimer(150 * time.Millisecond)

		select {
		case tt := <-timer2.C:
			if tt.Sub(begin) < 130*time.Millisecond {
				t.Error("timer2 fired too early")
			}
		case <-time.After(300 * time.Millisecond):
			t.Error("timer2 should have fired")
		}
	})

	t.Run("Concurrency", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				timer := GetTimer(5 * time.Millisecond)
				defer PutTimer(timer)
				<-timer.C
			}()
		}
		wg.Wait()
	})
}

func TestWaitSignal(t *testing.T) {
	t.Run("fires before deadline", func(t *testing.T) {
		ch := make(chan struct{}, 1)
		go func() {
			time.Sleep(10 * time.Millisecond)
			ch <- struct{}{}
		}()
		assert.True(t, WaitSignal(ch, time.Second))
	})

	t.Run("closed channel", func(t *testing.T) {
		ch := make(chan struct{})
		close(ch)
		assert.True(t, WaitSignal(ch, time.Second))
	})

	t.Run("deadline", func(t *testing.T) {
		begin := time.Now()
		assert.False(t, WaitSignal(make(chan struct{}), 40*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(begin), 35*time.Millisecond)
	})

	t.Run("zero timeout polls", func(t *testing.T) {
		ch := make(chan struct{}, 1)
		assert.False(t, WaitSignal(ch, 0))
		ch <- struct{}{}
		assert.True(t, WaitSignal(ch, 0))
	})
}
