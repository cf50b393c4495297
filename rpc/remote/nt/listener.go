// Package nt
// @Title  nats消息接收
// @Description  desc
// @Author  yr  2025/4/15
// @Update  yr  2025/6/20
package nt

import (
	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/njtc406/emberrpc/rpc/actor"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

type NatsListener struct {
	handler inf.IRemoteHandler
}

func (n *NatsListener) Handle(msg *nats.Msg) {
	var req actor.Message
	if err := msgpack.Unmarshal(msg.Data, &req); err != nil {
		log.SysLogger.Errorf("unmarshal nats message error: %v", err)
		return
	}

	if err := n.handler.Handle(&req); err != nil {
		log.SysLogger.Errorf("handle nats message error: %v", err)
	}
}
