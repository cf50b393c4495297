// Package msgenvelope
// @Title  信封构建
// @Description  线上消息与信封的互转
// @Author  yr  2025/3/16
// @Update  yr  2025/6/20
package msgenvelope

import (
	"context"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/utils/codec"
	"github.com/njtc406/emberrpc/rpc/utils/emberctx"
)

// FromMessage 由远程请求构建信封, 载荷解码失败时返回ErrMsgDeserializeFailed,
// 此时信封仍然可用(用于回错误应答)
func FromMessage(msg *actor.Message) (*MsgEnvelope, error) {
	ctx := emberctx.AddHeaders(context.Background(), msg.MessageHeader)
	e := NewMsgEnvelope(ctx)
	e.SetSenderPid(msg.SenderPid)
	e.SetReceiverPid(msg.ReceiverPid)
	e.SetMethod(msg.Method)
	e.SetReqId(msg.ReqId)
	e.SetNeedResponse(msg.NeedResp)
	if msg.Reply {
		e.SetReply()
	}
	e.SetErrStr(msg.Err)

	var buff []byte
	if msg.Reply {
		buff = msg.Response
	} else {
		buff = msg.Request
	}
	e.SetRequestBuff(buff)

	payload, err := codec.Decode(msg.TypeId, msg.TypeName, buff)
	if err != nil {
		return e, def.ErrMsgDeserializeFailed
	}
	if msg.Reply {
		e.SetResponse(payload)
	} else {
		e.SetRequest(payload)
	}
	return e, nil
}
