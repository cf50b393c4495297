// Package client
// @Title  发送器管理
// @Description  按地址+传输类型维护发送器,服务级持有,不使用全局状态
// @Author  yr  2025/3/18
// @Update  yr  2025/6/20
package client

import (
	"sync"

	"github.com/njtc406/emberrpc/rpc/def"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
)

type SenderCreator func(addr string, monitor inf.IMonitor) (inf.IRpcSender, error)

var senderCreators = map[string]SenderCreator{
	def.RpcTypeRpcx: newRpcxSender,
	def.RpcTypeGrpc: newGrpcSender,
	def.RpcTypeNats: newNatsSender,
}

// RegisterSenderCreator 注册自定义传输, 启动阶段调用
func RegisterSenderCreator(tp string, creator SenderCreator) {
	senderCreators[tp] = creator
}

// SenderManager 每个服务各自持有一份连接表
type SenderManager struct {
	mu          sync.RWMutex
	monitor     inf.IMonitor
	localSender inf.IRpcSender
	senders     map[string]map[string]inf.IRpcSender // addr -> tp -> sender
}

func NewSenderManager(monitor inf.IMonitor) *SenderManager {
	return &SenderManager{
		monitor:     monitor,
		localSender: newLocalSender(),
		senders:     make(map[string]map[string]inf.IRpcSender),
	}
}

func (m *SenderManager) GetLocalSender() inf.IRpcSender {
	return m.localSender
}

// GetRemoteSender 获取或建立到addr的发送器
func (m *SenderManager) GetRemoteSender(addr, tp string) (inf.IRpcSender, error) {
	m.mu.RLock()
	if tps, ok := m.senders[addr]; ok {
		if s, ok := tps[tp]; ok && !s.IsClosed() {
			m.mu.RUnlock()
			return s, nil
		}
	}
	m.mu.RUnlock()

	creator, ok := senderCreators[tp]
	if !ok {
		return nil, def.ErrRpcConnectionFailed
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if tps, ok := m.senders[addr]; ok {
		if s, ok := tps[tp]; ok && !s.IsClosed() {
			return s, nil
		}
	}
	s, err := creator(addr, m.monitor)
	if err != nil {
		return nil, err
	}
	if _, ok := m.senders[addr]; !ok {
		m.senders[addr] = make(map[string]inf.IRpcSender)
	}
	m.senders[addr][tp] = s
	return s, nil
}

func (m *SenderManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tps := range m.senders {
		for _, s := range tps {
			s.Close()
		}
	}
	m.senders = make(map[string]map[string]inf.IRpcSender)
	m.localSender.Close()
}
