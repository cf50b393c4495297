// Package interfaces
// @Title  rpc相关接口
// @Description  desc
// @Author  yr  2025/3/12
// @Update  yr  2025/6/20
package interfaces

import (
	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/config"
	"github.com/njtc406/emberrpc/rpc/dto"
)

// IRpcDispatcher 指向某个端点的消息通道,本地端点直达邮箱,远程端点走网络
type IRpcDispatcher interface {
	IMailboxChannel

	GetPid() *actor.PID
	IsLocal() bool
	SendRequest(envelope IEnvelope) error
	SendRequestAndRelease(envelope IEnvelope) error
	SendResponse(envelope IEnvelope) error
	IsClosed() bool
	Close()
}

// IInlineInvoker 支持在当前goroutine上直接执行的通道, 自调用场景使用
type IInlineInvoker interface {
	Invoke(e IEvent) error
}

// IRpcSender 按传输类型实现的发送器
type IRpcSender interface {
	SendRequest(dispatcher IRpcDispatcher, envelope IEnvelope) error
	SendRequestAndRelease(dispatcher IRpcDispatcher, envelope IEnvelope) error
	SendResponse(dispatcher IRpcDispatcher, envelope IEnvelope) error
	IsClosed() bool
	Close()
}

// IRpcSenderFactory 根据pid选择发送通道
type IRpcSenderFactory interface {
	GetDispatcher(pid *actor.PID) IRpcDispatcher
}

// IMonitor 管理在途调用
type IMonitor interface {
	Start()
	Stop()
	GenSeq() uint64
	Add(envelope IEnvelope)
	Remove(reqId uint64) IEnvelope
	Get(reqId uint64) IEnvelope
	NewCancel(reqId uint64) dto.CancelRpc
}

// IRemoteHandler 远程消息入口, 请求与应答都从这里进入节点
type IRemoteHandler interface {
	Handle(msg *actor.Message) error
}

// IRemoteServer 远程监听服务
type IRemoteServer interface {
	Init(handler IRemoteHandler, conf *config.RPCServer, nodeUid string) error
	Serve() error
	Close()
}

// INameSubscriber 按端点名订阅请求主题的远程服务(经broker转发的传输实现)
type INameSubscriber interface {
	WatchName(name string) error
	UnwatchName(name string)
}
