// Package monitor
// @Title  调用监视器
// @Description  管理在途调用,应答/超时/取消三方通过Remove竞争认领,保证只有一方完成调用
// @Author  yr  2025/3/16
// @Update  yr  2025/6/20
package monitor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/dto"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/msgenvelope"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

type RpcMonitor struct {
	mu      sync.Mutex
	seed    uint64
	waitMap map[uint64]inf.IEnvelope
	timers  map[uint64]*time.Timer
	stopped int32
}

func NewRpcMonitor() inf.IMonitor {
	return &RpcMonitor{
		waitMap: make(map[uint64]inf.IEnvelope),
		timers:  make(map[uint64]*time.Timer),
	}
}

func (m *RpcMonitor) Start() {}

// Stop 认领全部在途调用并以服务停止错误完成
func (m *RpcMonitor) Stop() {
	if !atomic.CompareAndSwapInt32(&m.stopped, 0, 1) {
		return
	}
	m.mu.Lock()
	pending := make([]inf.IEnvelope, 0, len(m.waitMap))
	for id, e := range m.waitMap {
		if t, ok := m.timers[id]; ok {
			t.Stop()
			delete(m.timers, id)
		}
		delete(m.waitMap, id)
		pending = append(pending, e)
	}
	m.mu.Unlock()

	for _, e := range pending {
		e.SetError(def.ErrServiceStopped)
		msgenvelope.Complete(e)
	}
}

func (m *RpcMonitor) GenSeq() uint64 {
	return atomic.AddUint64(&m.seed, 1)
}

// Add 登记在途调用, 信封上带timeout时同时挂超时定时器
func (m *RpcMonitor) Add(e inf.IEnvelope) {
	reqId := e.GetReqId()
	if reqId == 0 {
		log.SysLogger.Error("monitor add envelope without reqId")
		return
	}

	m.mu.Lock()
	m.waitMap[reqId] = e
	if timeout := e.GetTimeout(); timeout > 0 {
		m.timers[reqId] = time.AfterFunc(timeout, func() {
			m.onTimeout(reqId)
		})
	}
	m.mu.Unlock()
}

// Remove 认领在途调用, 返回nil表示已被其他方认领
func (m *RpcMonitor) Remove(reqId uint64) inf.IEnvelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.waitMap[reqId]
	if !ok {
		return nil
	}
	delete(m.waitMap, reqId)
	if t, ok := m.timers[reqId]; ok {
		t.Stop()
		delete(m.timers, reqId)
	}
	return e
}

func (m *RpcMonitor) Get(reqId uint64) inf.IEnvelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waitMap[reqId]
}

func (m *RpcMonitor) onTimeout(reqId uint64) {
	e := m.Remove(reqId)
	if e == nil {
		// 应答已先到
		return
	}
	e.SetError(def.ErrRPCCallTimeout)
	msgenvelope.Complete(e)
}

// NewCancel 生成取消函数, 取消只能阻止回调,不能撤回已发出的调用
func (m *RpcMonitor) NewCancel(reqId uint64) dto.CancelRpc {
	return func() {
		e := m.Remove(reqId)
		if e == nil {
			return
		}
		e.SetResponse(nil)
		e.SetError(def.ErrRPCCallCanceled)
		msgenvelope.Complete(e)
	}
}
