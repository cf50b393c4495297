// Package rx
// @Title  rpcx消息接收
// @Description  desc
// @Author  yr  2025/3/18
// @Update  yr  2025/6/20
package rx

import (
	"context"

	"github.com/njtc406/emberrpc/rpc/actor"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
)

// EmberListener rpcx服务对象, 发送端按单向消息投递,应答走独立消息
type EmberListener struct {
	handler inf.IRemoteHandler
}

func (l *EmberListener) RPCCall(_ context.Context, req *actor.Message, _ *actor.Message) error {
	return l.handler.Handle(req)
}
