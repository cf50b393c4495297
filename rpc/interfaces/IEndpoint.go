// Package interfaces
// @Title  端点接口
// @Description  desc
// @Author  yr  2025/3/12
// @Update  yr  2025/6/20
package interfaces

import (
	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/future"
)

// IEndpointHandler 用户实现的生命周期钩子, 由core.Endpoint提供默认实现
type IEndpointHandler interface {
	OnInit() error
	OnStart() error
	OnStop() *future.Future
}

// IEndpoint 运行中的端点
type IEndpoint interface {
	IMailboxChannel

	GetPid() *actor.PID
	GetName() string
	Start() error
	CloseAsync() *future.Future
	GetTerminationFuture() *future.Future
	IsTerminated() bool
}

// IEndpointOwner 端点归属的服务侧能力
type IEndpointOwner interface {
	IRpcSenderFactory

	GetMonitor() IMonitor
	GetNodePid() *actor.PID
	Deregister(pid *actor.PID)
	ReportFailure(pid *actor.PID, err error)
}
