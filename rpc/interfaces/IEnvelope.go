// Package interfaces
// @Title  消息信封接口
// @Description  desc
// @Author  yr  2025/3/12
// @Update  yr  2025/6/20
package interfaces

import (
	"context"
	"time"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/dto"
	"github.com/njtc406/emberrpc/rpc/future"
)

type IEnvelope interface {
	IEvent

	SetContext(ctx context.Context)
	GetContext() context.Context
	SetHeaders(headers dto.Header)
	SetHeader(key, value string)
	GetHeader(key string) string
	GetHeaders() dto.Header

	SetSenderPid(pid *actor.PID)
	GetSenderPid() *actor.PID
	SetReceiverPid(pid *actor.PID)
	GetReceiverPid() *actor.PID
	SetDispatcher(dispatcher IRpcDispatcher)
	GetDispatcher() IRpcDispatcher

	SetMethod(method string)
	GetMethod() string
	SetReqId(reqId uint64)
	GetReqId() uint64
	SetTimeout(timeout time.Duration)
	GetTimeout() time.Duration
	SetTimerId(timerId uint64)
	GetTimerId() uint64

	SetRequest(req interface{})
	GetRequest() interface{}
	SetRequestBuff(buff []byte)
	GetRequestBuff() []byte
	SetResponse(resp interface{})
	GetResponse() interface{}
	SetError(err error)
	SetErrStr(errStr string)
	GetError() error
	GetErrStr() string
	SetNeedResponse(need bool)
	NeedResponse() bool
	SetReply()
	IsReply() bool

	SetFuture(f *future.Future)
	GetFuture() *future.Future
	Done()

	ToMessage() (*actor.Message, error)
	Release()
}
