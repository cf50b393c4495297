// Package timer
// @Title  任务调度器
// @Description  定时任务统一回到端点主线程执行,这里只负责到期投递
// @Author  yr  2025/3/15
// @Update  yr  2025/6/20
package timer

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Timer 到期的定时任务,投递到邮箱后在主线程Do
type Timer struct {
	Id uint64
	cb func()
}

func (t *Timer) Do() {
	if t.cb != nil {
		t.cb()
	}
}

type entry struct {
	t      *time.Timer
	repeat bool
}

// Scheduler 到期任务通过emit投递出去,不在本协程执行
type Scheduler struct {
	mu      sync.Mutex
	seq     uint64
	entries map[uint64]*entry
	emit    func(t *Timer)
	stopped bool
}

func NewScheduler(emit func(t *Timer)) *Scheduler {
	return &Scheduler{
		entries: make(map[uint64]*entry),
		emit:    emit,
	}
}

func (s *Scheduler) nextId() uint64 {
	s.seq++
	return s.seq
}

// AfterFunc 单次定时
func (s *Scheduler) AfterFunc(d time.Duration, cb func()) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0
	}
	id := s.nextId()
	e := &entry{}
	e.t = time.AfterFunc(d, func() {
		s.fire(id, cb, nil)
	})
	s.entries[id] = e
	return id
}

// TickerFunc 固定间隔重复
func (s *Scheduler) TickerFunc(d time.Duration, cb func()) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0
	}
	id := s.nextId()
	e := &entry{repeat: true}
	var resched func()
	resched = func() {
		s.fire(id, cb, func() {
			e.t = time.AfterFunc(d, resched)
		})
	}
	e.t = time.AfterFunc(d, resched)
	s.entries[id] = e
	return id
}

// CronFunc cron表达式调度, 支持标准5段与@every语法
func (s *Scheduler) CronFunc(spec string, cb func()) (uint64, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0, nil
	}
	id := s.nextId()
	e := &entry{repeat: true}
	var resched func()
	next := func() time.Duration {
		now := time.Now()
		return sched.Next(now).Sub(now)
	}
	resched = func() {
		s.fire(id, cb, func() {
			e.t = time.AfterFunc(next(), resched)
		})
	}
	e.t = time.AfterFunc(next(), resched)
	s.entries[id] = e
	return id, nil
}

// fire 到期回调, reschedule非空表示重复任务
func (s *Scheduler) fire(id uint64, cb func(), reschedule func()) {
	s.mu.Lock()
	_, ok := s.entries[id]
	if !ok || s.stopped {
		// 已取消或已停止
		s.mu.Unlock()
		return
	}
	if reschedule != nil {
		reschedule()
	} else {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	s.emit(&Timer{Id: id, cb: cb})
}

// Cancel 取消定时任务, 已经在途的投递无法撤回
func (s *Scheduler) Cancel(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	delete(s.entries, id)
	return e.t.Stop()
}

// Stop 停止全部定时任务
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for id, e := range s.entries {
		e.t.Stop()
		delete(s.entries, id)
	}
}
