// Package msgenvelope
// @Title  消息信封
// @Description  一次调用在进程内流转的载体,从池中分配
// @Author  yr  2025/3/16
// @Update  yr  2025/6/20
package msgenvelope

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/dto"
	"github.com/njtc406/emberrpc/rpc/future"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/codec"
	"github.com/njtc406/emberrpc/rpc/utils/emberctx"
	"github.com/njtc406/emberrpc/rpc/utils/pool"
)

var envelopePool = pool.NewExtendedPool[*MsgEnvelope](1024, func() *MsgEnvelope {
	return &MsgEnvelope{}
})

type meta struct {
	ctx         context.Context
	senderPid   *actor.PID
	receiverPid *actor.PID
	dispatcher  inf.IRpcDispatcher
	reqId       uint64
	timerId     uint64
	timeout     time.Duration
	fut         *future.Future
}

type data struct {
	method      string
	request     interface{}
	requestBuff []byte // 远程消息未解码的载荷
	response    interface{}
	err         error
	needResp    bool
	reply       bool
}

// MsgEnvelope 会被多个协程读写(投递方/主线程/定时器),字段访问需要加锁
type MsgEnvelope struct {
	dto.DataRef
	mu   sync.RWMutex
	meta meta
	data data
}

func NewMsgEnvelope(ctx context.Context) *MsgEnvelope {
	if ctx == nil {
		ctx = emberctx.NewCtx()
	}
	e := envelopePool.Get()
	e.meta.ctx = ctx
	return e
}

func ReleaseMsgEnvelope(e inf.IEnvelope) {
	if e == nil {
		return
	}
	e.Release()
}

func (e *MsgEnvelope) Reset() {
	e.meta = meta{}
	e.data = data{}
}

func (e *MsgEnvelope) Release() {
	if e.IsRef() {
		envelopePool.Put(e)
	}
}

func (e *MsgEnvelope) GetType() int32 {
	return def.SysEventRpc
}

func (e *MsgEnvelope) GetPriority() int32 {
	return def.PriorityUser
}

func (e *MsgEnvelope) SetContext(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.ctx = ctx
}

func (e *MsgEnvelope) GetContext() context.Context {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.meta.ctx == nil {
		return context.Background()
	}
	return e.meta.ctx
}

func (e *MsgEnvelope) SetHeaders(headers dto.Header) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.ctx = emberctx.AddHeaders(e.ctxLocked(), headers)
}

func (e *MsgEnvelope) SetHeader(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.ctx = emberctx.AddHeader(e.ctxLocked(), key, value)
}

func (e *MsgEnvelope) ctxLocked() context.Context {
	if e.meta.ctx == nil {
		e.meta.ctx = context.Background()
	}
	return e.meta.ctx
}

func (e *MsgEnvelope) GetHeader(key string) string {
	return emberctx.GetHeaderValue(e.GetContext(), key)
}

func (e *MsgEnvelope) GetHeaders() dto.Header {
	return emberctx.GetHeader(e.GetContext())
}

func (e *MsgEnvelope) SetSenderPid(pid *actor.PID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.senderPid = pid
}

func (e *MsgEnvelope) GetSenderPid() *actor.PID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.meta.senderPid
}

func (e *MsgEnvelope) SetReceiverPid(pid *actor.PID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.receiverPid = pid
}

func (e *MsgEnvelope) GetReceiverPid() *actor.PID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.meta.receiverPid
}

func (e *MsgEnvelope) SetDispatcher(dispatcher inf.IRpcDispatcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.dispatcher = dispatcher
}

func (e *MsgEnvelope) GetDispatcher() inf.IRpcDispatcher {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.meta.dispatcher
}

func (e *MsgEnvelope) SetMethod(method string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.method = method
}

func (e *MsgEnvelope) GetMethod() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.method
}

func (e *MsgEnvelope) SetReqId(reqId uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.reqId = reqId
}

func (e *MsgEnvelope) GetReqId() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.meta.reqId
}

func (e *MsgEnvelope) SetTimeout(timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.timeout = timeout
}

func (e *MsgEnvelope) GetTimeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.meta.timeout
}

func (e *MsgEnvelope) SetTimerId(timerId uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.timerId = timerId
}

func (e *MsgEnvelope) GetTimerId() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.meta.timerId
}

func (e *MsgEnvelope) SetRequest(req interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.request = req
}

func (e *MsgEnvelope) GetRequest() interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.request
}

func (e *MsgEnvelope) SetRequestBuff(buff []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.requestBuff = buff
}

func (e *MsgEnvelope) GetRequestBuff() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.requestBuff
}

func (e *MsgEnvelope) SetResponse(resp interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.response = resp
}

func (e *MsgEnvelope) GetResponse() interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.response
}

func (e *MsgEnvelope) SetError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.err = err
}

func (e *MsgEnvelope) SetErrStr(errStr string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if errStr == "" {
		e.data.err = nil
		return
	}
	e.data.err = errors.New(errStr)
}

func (e *MsgEnvelope) GetError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.err
}

func (e *MsgEnvelope) GetErrStr() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.data.err == nil {
		return ""
	}
	return e.data.err.Error()
}

func (e *MsgEnvelope) SetNeedResponse(need bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.needResp = need
}

func (e *MsgEnvelope) NeedResponse() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.needResp
}

func (e *MsgEnvelope) SetReply() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.reply = true
}

func (e *MsgEnvelope) IsReply() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.reply
}

func (e *MsgEnvelope) SetFuture(f *future.Future) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta.fut = f
}

func (e *MsgEnvelope) GetFuture() *future.Future {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.meta.fut
}

// Done 完成信封上挂载的future
func (e *MsgEnvelope) Done() {
	e.mu.RLock()
	fut := e.meta.fut
	resp := e.data.response
	err := e.data.err
	e.mu.RUnlock()

	if fut != nil {
		fut.Complete(resp, err)
	}
}

// ToMessage 编码为线上消息, 请求与应答共用此方法
func (e *MsgEnvelope) ToMessage() (*actor.Message, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var payload interface{}
	if e.data.reply {
		payload = e.data.response
	} else {
		payload = e.data.request
	}

	msg := &actor.Message{
		SenderPid:     e.meta.senderPid,
		ReceiverPid:   e.meta.receiverPid,
		Method:        e.data.method,
		MessageHeader: emberctx.GetHeader(e.meta.ctx),
		Reply:         e.data.reply,
		ReqId:         e.meta.reqId,
		NeedResp:      e.data.needResp,
	}
	if e.data.err != nil {
		msg.Err = e.data.err.Error()
	}

	if payload != nil {
		typeId := codec.TypeOf(payload)
		buff, typeName, err := codec.Encode(typeId, payload)
		if err != nil {
			return nil, def.ErrMsgSerializeFailed
		}
		msg.TypeId = typeId
		msg.TypeName = typeName
		if e.data.reply {
			msg.Response = buff
		} else {
			msg.Request = buff
		}
	}
	return msg, nil
}
