package remote

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/future"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/monitor"
	"github.com/njtc406/emberrpc/rpc/msgenvelope"
	"github.com/njtc406/emberrpc/rpc/utils/codec"
	"github.com/njtc406/emberrpc/rpc/utils/dedup"
)

type sumResp struct {
	Sum int `json:"sum"`
}

type rawPayload struct {
	V int `json:"v"`
}

func init() {
	codec.RegisterType(&sumResp{})
}

// captureDispatcher 收下投递的信封供断言
type captureDispatcher struct {
	pid       *actor.PID
	mu        sync.Mutex
	requests  []inf.IEnvelope
	responses []inf.IEnvelope
}

func (d *captureDispatcher) GetPid() *actor.PID           { return d.pid }
func (d *captureDispatcher) IsLocal() bool                { return true }
func (d *captureDispatcher) IsClosed() bool               { return false }
func (d *captureDispatcher) Close()                       {}
func (d *captureDispatcher) PostMessage(inf.IEvent) error { return nil }

func (d *captureDispatcher) SendRequest(e inf.IEnvelope) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, e)
	return nil
}

func (d *captureDispatcher) SendRequestAndRelease(e inf.IEnvelope) error {
	return d.SendRequest(e)
}

func (d *captureDispatcher) SendResponse(e inf.IEnvelope) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses = append(d.responses, e)
	return nil
}

func (d *captureDispatcher) lastResponse() inf.IEnvelope {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.responses) == 0 {
		return nil
	}
	return d.responses[len(d.responses)-1]
}

type fakeFactory struct {
	dispatchers map[string]*captureDispatcher
}

func (f *fakeFactory) GetDispatcher(pid *actor.PID) inf.IRpcDispatcher {
	d, ok := f.dispatchers[pid.GetServiceUid()]
	if !ok {
		return nil
	}
	return d
}

type handlerEnv struct {
	handler  *MessageHandler
	monitor  inf.IMonitor
	factory  *fakeFactory
	caller   *actor.PID
	callee   *actor.PID
	callerCh *captureDispatcher
	calleeCh *captureDispatcher
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	mt := monitor.NewRpcMonitor()
	mt.Start()
	t.Cleanup(mt.Stop)

	caller := actor.NewPID("node-a", "caller", def.RpcTypeRpcx, "127.0.0.1:6688", 1)
	callee := actor.NewPID("node-b", "calc", def.RpcTypeRpcx, "127.0.0.1:6689", 1)
	callerCh := &captureDispatcher{pid: caller}
	calleeCh := &captureDispatcher{pid: callee}
	factory := &fakeFactory{dispatchers: map[string]*captureDispatcher{
		caller.GetServiceUid(): callerCh,
		callee.GetServiceUid(): calleeCh,
	}}

	return &handlerEnv{
		handler:  NewMessageHandler(factory, mt, dedup.NewDeDuplicator(time.Minute, 0)),
		monitor:  mt,
		factory:  factory,
		caller:   caller,
		callee:   callee,
		callerCh: callerCh,
		calleeCh: calleeCh,
	}
}

func (env *handlerEnv) pendingCall(t *testing.T) (uint64, *future.Future) {
	t.Helper()
	fut := future.New()
	e := msgenvelope.NewMsgEnvelope(nil)
	reqId := env.monitor.GenSeq()
	e.SetReqId(reqId)
	e.SetFuture(fut)
	env.monitor.Add(e)
	return reqId, fut
}

func replyMessage(t *testing.T, reqId uint64, payload interface{}, errStr string) *actor.Message {
	t.Helper()
	e := msgenvelope.NewMsgEnvelope(nil)
	e.SetReqId(reqId)
	e.SetReply()
	e.SetResponse(payload)
	msg, err := e.ToMessage()
	require.NoError(t, err)
	e.Release()
	msg.Err = errStr
	return msg
}

func TestReplyCompletesPendingCall(t *testing.T) {
	env := newHandlerEnv(t)
	reqId, fut := env.pendingCall(t)

	require.NoError(t, env.handler.Handle(replyMessage(t, reqId, &sumResp{Sum: 9}, "")))

	res, err := fut.ResultWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 9, res.(*sumResp).Sum)
	// 信封已认领
	assert.Nil(t, env.monitor.Get(reqId))
}

func TestReplyCarriesRemoteError(t *testing.T) {
	env := newHandlerEnv(t)
	reqId, fut := env.pendingCall(t)

	require.NoError(t, env.handler.Handle(replyMessage(t, reqId, nil, "remote failed")))

	_, err := fut.ResultWithTimeout(time.Second)
	require.Error(t, err)
	assert.Equal(t, "remote failed", err.Error())
}

func TestLateReplyDropped(t *testing.T) {
	env := newHandlerEnv(t)
	reqId, fut := env.pendingCall(t)

	// 先超时/取消认领,应答再到只能丢弃
	claimed := env.monitor.Remove(reqId)
	require.NotNil(t, claimed)
	claimed.Release()

	require.NoError(t, env.handler.Handle(replyMessage(t, reqId, &sumResp{Sum: 9}, "")))
	assert.False(t, fut.IsCompleted())
}

func TestUndecodableReplyFailsCall(t *testing.T) {
	env := newHandlerEnv(t)
	reqId, fut := env.pendingCall(t)

	msg := replyMessage(t, reqId, &rawPayload{V: 1}, "")
	err := env.handler.Handle(msg)
	assert.Equal(t, def.ErrMsgDeserializeFailed, err)

	// 解码失败归因到调用方的future,而不是悬挂
	_, ferr := fut.ResultWithTimeout(time.Second)
	assert.Equal(t, def.ErrMsgDeserializeFailed, ferr)
}

func requestMessage(t *testing.T, env *handlerEnv, reqId uint64, payload interface{}) *actor.Message {
	t.Helper()
	e := msgenvelope.NewMsgEnvelope(nil)
	e.SetSenderPid(env.caller)
	e.SetReceiverPid(env.callee)
	e.SetMethod("RpcAdd")
	e.SetReqId(reqId)
	e.SetNeedResponse(true)
	e.SetRequest(payload)
	msg, err := e.ToMessage()
	require.NoError(t, err)
	e.Release()
	return msg
}

func TestRequestRoutedToEndpoint(t *testing.T) {
	env := newHandlerEnv(t)

	require.NoError(t, env.handler.Handle(requestMessage(t, env, 1, &sumResp{Sum: 1})))

	require.Len(t, env.calleeCh.requests, 1)
	e := env.calleeCh.requests[0]
	assert.Equal(t, "RpcAdd", e.GetMethod())
	// 应答通道指向调用方
	assert.Same(t, env.callerCh, e.GetDispatcher())
	e.Release()
}

func TestDuplicateRequestDropped(t *testing.T) {
	env := newHandlerEnv(t)

	require.NoError(t, env.handler.Handle(requestMessage(t, env, 7, &sumResp{Sum: 1})))
	require.NoError(t, env.handler.Handle(requestMessage(t, env, 7, &sumResp{Sum: 1})))

	assert.Len(t, env.calleeCh.requests, 1)
	for _, e := range env.calleeCh.requests {
		e.Release()
	}
}

func TestUndecodableRequestAnsweredWithError(t *testing.T) {
	env := newHandlerEnv(t)

	err := env.handler.Handle(requestMessage(t, env, 2, &rawPayload{V: 1}))
	assert.Equal(t, def.ErrMsgDeserializeFailed, err)

	resp := env.callerCh.lastResponse()
	require.NotNil(t, resp)
	assert.True(t, resp.IsReply())
	assert.Equal(t, def.ErrMsgDeserializeFailed, resp.GetError())
	resp.Release()
}

func TestRequestForUnknownEndpoint(t *testing.T) {
	env := newHandlerEnv(t)
	ghost := actor.NewPID("node-b", "ghost", def.RpcTypeRpcx, "127.0.0.1:6689", 1)

	e := msgenvelope.NewMsgEnvelope(nil)
	e.SetSenderPid(env.caller)
	e.SetReceiverPid(ghost)
	e.SetMethod("RpcAdd")
	e.SetReqId(3)
	e.SetNeedResponse(true)
	msg, err := e.ToMessage()
	require.NoError(t, err)
	e.Release()

	err = env.handler.Handle(msg)
	assert.Equal(t, def.ErrRecipientUnreachable, err)

	resp := env.callerCh.lastResponse()
	require.NotNil(t, resp)
	assert.Equal(t, def.ErrRecipientUnreachable, resp.GetError())
	resp.Release()
}
