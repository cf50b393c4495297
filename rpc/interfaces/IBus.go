// Package interfaces
// @Title  调用总线接口
// @Description  desc
// @Author  yr  2025/3/21
// @Update  yr  2025/6/20
package interfaces

import (
	"context"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/dto"
	"github.com/njtc406/emberrpc/rpc/future"
)

// IBus 指向某个端点的调用入口
type IBus interface {
	Call(ctx context.Context, method string, in, out interface{}) error
	CallWithFuture(ctx context.Context, method string, in interface{}) *future.Future
	AsyncCall(ctx context.Context, method string, in interface{}, callbacks ...dto.CompletionFunc) (dto.CancelRpc, error)
	Send(ctx context.Context, method string, in interface{}) error
	GetReceiverPid() *actor.PID
}
