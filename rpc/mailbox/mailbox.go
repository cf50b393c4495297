// Package mailbox
// @Title  邮箱
// @Description  单消费者FIFO队列,控制事件不受挂起影响
// @Author  yr  2025/3/15
// @Update  yr  2025/6/20
package mailbox

import (
	"sync/atomic"

	"github.com/njtc406/emberrpc/rpc/def"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/mpsc"
)

// defaultMailbox 投递与消费共用一条FIFO队列,保证入队顺序即处理顺序
type defaultMailbox struct {
	suspended int32 // 挂起标记,只拦截业务事件
	closed    int32 // 关闭标记,拦截所有事件
	queue     *mpsc.Queue[inf.IEvent]
	worker    *worker
}

func NewDefaultMailbox(invoker inf.IMessageInvoker) inf.IMailbox {
	m := &defaultMailbox{
		queue: mpsc.New[inf.IEvent](),
	}
	m.worker = newWorker(m.queue, invoker)
	return m
}

func (m *defaultMailbox) PostMessage(e inf.IEvent) error {
	if atomic.LoadInt32(&m.closed) == 1 {
		return def.ErrMailboxClosed
	}
	if e.GetPriority() != def.PrioritySys && m.isSuspended() {
		return def.ErrMailboxSuspended
	}
	m.queue.Push(e)
	return nil
}

func (m *defaultMailbox) isSuspended() bool {
	return atomic.LoadInt32(&m.suspended) == 1
}

func (m *defaultMailbox) Suspend() bool {
	return atomic.CompareAndSwapInt32(&m.suspended, 0, 1)
}

func (m *defaultMailbox) Resume() bool {
	return atomic.CompareAndSwapInt32(&m.suspended, 1, 0)
}

// Close 停止接收任何新事件, 已入队的仍会被处理
func (m *defaultMailbox) Close() {
	atomic.StoreInt32(&m.closed, 1)
}

func (m *defaultMailbox) Start() {
	m.worker.Start()
}

// Stop 关闭并停止worker, 返回前会处理完剩余事件
func (m *defaultMailbox) Stop() {
	m.Close()
	m.worker.stop()
}
