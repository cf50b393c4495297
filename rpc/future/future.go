// Package future
// @Title  future
// @Description  只允许完成一次的异步结果
// @Author  yr  2025/3/15
// @Update  yr  2025/6/20
package future

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/njtc406/emberrpc/rpc/def"
)

const (
	statePending int32 = iota
	stateCompleting
	stateCompleted
)

// Future 只能完成一次,之后的Complete都会被忽略
type Future struct {
	state int32
	done  chan struct{}

	mu        sync.Mutex
	result    interface{}
	err       error
	callbacks []func(result interface{}, err error)
}

func New() *Future {
	return &Future{done: make(chan struct{})}
}

// Completed 返回一个已完成的future
func Completed(result interface{}, err error) *Future {
	f := New()
	f.Complete(result, err)
	return f
}

// Complete 尝试完成, 返回是否由本次调用完成
func (f *Future) Complete(result interface{}, err error) bool {
	if !atomic.CompareAndSwapInt32(&f.state, statePending, stateCompleting) {
		return false
	}

	f.mu.Lock()
	f.result = result
	f.err = err
	cbs := f.callbacks
	f.callbacks = nil
	atomic.StoreInt32(&f.state, stateCompleted)
	f.mu.Unlock()

	close(f.done)
	for _, cb := range cbs {
		cb(result, err)
	}
	return true
}

func (f *Future) IsCompleted() bool {
	return atomic.LoadInt32(&f.state) == stateCompleted
}

// Done 完成时关闭
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result 阻塞直到完成
func (f *Future) Result() (interface{}, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

// ResultWithTimeout 最多等待timeout, 超时返回ErrRPCCallTimeout
func (f *Future) ResultWithTimeout(timeout time.Duration) (interface{}, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.result, f.err
	case <-t.C:
		return nil, def.ErrRPCCallTimeout
	}
}

// OnComplete 注册完成回调, 已完成时立即执行
func (f *Future) OnComplete(cb func(result interface{}, err error)) {
	f.mu.Lock()
	if atomic.LoadInt32(&f.state) != stateCompleted {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	result, err := f.result, f.err
	f.mu.Unlock()
	cb(result, err)
}
