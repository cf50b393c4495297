// Package mpsc provides a lock-free multi-producer, single-consumer queue.
//
// Push may be called from any goroutine. Pop and Empty must only be called
// from the single consumer goroutine.
package mpsc

// Based on the non-intrusive MPSC node queue from
// http://www.1024cores.net/home/lock-free-algorithms/queues/non-intrusive-mpsc-node-based-queue

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

type node[T any] struct {
	next *node[T]
	val  T
}

type Queue[T any] struct {
	head, tail *node[T]
	zero       T
	pool       sync.Pool
	len        int64
}

func New[T any]() *Queue[T] {
	stub := &node[T]{}
	q := &Queue[T]{head: stub, tail: stub}
	q.pool.New = func() interface{} {
		return &node[T]{}
	}
	return q
}

// Push appends x. Producers swap the head pointer first, then publish the
// link, so concurrent producers never touch the same node.
func (q *Queue[T]) Push(x T) {
	n := q.pool.Get().(*node[T])
	n.next = nil
	n.val = x

	prev := (*node[T])(atomic.SwapPointer((*unsafe.Pointer)(unsafe.Pointer(&q.head)), unsafe.Pointer(n)))
	atomic.StorePointer((*unsafe.Pointer)(unsafe.Pointer(&prev.next)), unsafe.Pointer(n))
	atomic.AddInt64(&q.len, 1)
}

// Pop removes the item at the front, or returns false if the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	tail := q.tail
	next := (*node[T])(atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&tail.next))))
	if next == nil {
		return q.zero, false
	}

	q.tail = next
	v := next.val

	tail.val = q.zero
	tail.next = nil
	q.pool.Put(tail)

	atomic.AddInt64(&q.len, -1)
	return v, true
}

func (q *Queue[T]) Empty() bool {
	next := (*node[T])(atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&q.tail.next))))
	return next == nil
}

func (q *Queue[T]) Len() int {
	return int(atomic.LoadInt64(&q.len))
}
