// Package mailbox
// @Title  邮箱的工作线程
// @Description  desc
// @Author  yr  2025/3/15
// @Update  yr  2025/6/20
package mailbox

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/log"
	"github.com/njtc406/emberrpc/rpc/utils/mpsc"
)

type worker struct {
	closed  int32
	wg      sync.WaitGroup
	queue   *mpsc.Queue[inf.IEvent]
	invoker inf.IMessageInvoker
}

func newWorker(queue *mpsc.Queue[inf.IEvent], invoker inf.IMessageInvoker) *worker {
	return &worker{
		queue:   queue,
		invoker: invoker,
	}
}

func (w *worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *worker) run() {
	defer w.wg.Done()

	defer func() {
		// 退出前处理完剩余事件
		for {
			e, ok := w.queue.Pop()
			if !ok {
				return
			}
			w.safeExec(e)
		}
	}()

	var backoff = 1
	var maxBackoff = 4
	for atomic.LoadInt32(&w.closed) == 0 {
		if e, ok := w.queue.Pop(); ok {
			w.safeExec(e)
			backoff = 1
			continue
		}

		// 指数退避减少忙等开销
		if backoff < maxBackoff {
			backoff *= 2
		}
		time.Sleep(time.Microsecond * time.Duration(backoff))
	}
}

func (w *worker) stop() {
	atomic.StoreInt32(&w.closed, 1)
	w.wg.Wait()
}

func (w *worker) safeExec(e inf.IEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.SysLogger.Errorf("exec error: %v\ntrace:%s", r, debug.Stack())
			w.invoker.EscalateFailure(r, e)
		}
	}()

	w.invoker.InvokeMessage(e)
}
