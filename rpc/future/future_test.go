package future

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteOnce(t *testing.T) {
	f := New()
	assert.True(t, f.Complete(1, nil))
	assert.False(t, f.Complete(2, nil))

	v, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestCompleteRace(t *testing.T) {
	f := New()
	var wins int32
	for i := 0; i < 16; i++ {
		go func(n int) {
			if f.Complete(n, nil) {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	_, err := f.Result()
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&wins) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestResultWithTimeout(t *testing.T) {
	f := New()
	_, err := f.ResultWithTimeout(20 * time.Millisecond)
	assert.Error(t, err)

	// 超时后完成依然有效,结果保留给后续读取
	f.Complete("late", nil)
	v, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, "late", v)
}

func TestOnCompleteAfterDone(t *testing.T) {
	f := New()
	cause := errors.New("boom")
	f.Complete(nil, cause)

	called := make(chan error, 1)
	f.OnComplete(func(_ interface{}, err error) {
		called <- err
	})
	select {
	case err := <-called:
		assert.Equal(t, cause, err)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
}

func TestOnCompleteBeforeDone(t *testing.T) {
	f := New()
	called := make(chan interface{}, 1)
	f.OnComplete(func(v interface{}, _ error) {
		called <- v
	})
	f.Complete(42, nil)
	select {
	case v := <-called:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
}
