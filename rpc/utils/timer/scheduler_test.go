package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterFuncFiresAfterDelay(t *testing.T) {
	fired := make(chan *Timer, 1)
	s := NewScheduler(func(tm *Timer) { fired <- tm })
	defer s.Stop()

	start := time.Now()
	id := s.AfterFunc(20*time.Millisecond, func() {})
	require.NotZero(t, id)

	select {
	case tm := <-fired:
		assert.Equal(t, id, tm.Id)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("timer not emitted")
	}
}

func TestTimerDoRunsCallback(t *testing.T) {
	fired := make(chan *Timer, 1)
	s := NewScheduler(func(tm *Timer) { fired <- tm })
	defer s.Stop()

	var ran int32
	s.AfterFunc(time.Millisecond, func() { atomic.AddInt32(&ran, 1) })

	tm := <-fired
	// 投递时只携带回调, 执行发生在这里
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
	tm.Do()
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestTickerFuncRepeats(t *testing.T) {
	fired := make(chan *Timer, 16)
	s := NewScheduler(func(tm *Timer) { fired <- tm })
	defer s.Stop()

	id := s.TickerFunc(10*time.Millisecond, func() {})

	for i := 0; i < 3; i++ {
		select {
		case tm := <-fired:
			assert.Equal(t, id, tm.Id)
		case <-time.After(time.Second):
			t.Fatal("ticker missed a round")
		}
	}
	assert.True(t, s.Cancel(id))
}

func TestCancel(t *testing.T) {
	fired := make(chan *Timer, 1)
	s := NewScheduler(func(tm *Timer) { fired <- tm })
	defer s.Stop()

	id := s.AfterFunc(50*time.Millisecond, func() {})
	assert.True(t, s.Cancel(id))
	assert.False(t, s.Cancel(id))

	select {
	case <-fired:
		t.Fatal("canceled timer still emitted")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStopDropsAll(t *testing.T) {
	fired := make(chan *Timer, 4)
	s := NewScheduler(func(tm *Timer) { fired <- tm })

	s.AfterFunc(30*time.Millisecond, func() {})
	s.TickerFunc(30*time.Millisecond, func() {})
	s.Stop()

	assert.Zero(t, s.AfterFunc(time.Millisecond, func() {}))
	select {
	case <-fired:
		t.Fatal("stopped scheduler still emitted")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestCronFuncEvery(t *testing.T) {
	fired := make(chan *Timer, 4)
	s := NewScheduler(func(tm *Timer) { fired <- tm })
	defer s.Stop()

	id, err := s.CronFunc("@every 1s", func() {})
	require.NoError(t, err)
	require.NotZero(t, id)
	assert.True(t, s.Cancel(id))

	_, err = s.CronFunc("not a cron spec", func() {})
	assert.Error(t, err)
}
