// Package msgbus
// @Title  消息总线
// @Description  面向调用方的统一入口,本地直达邮箱,远程走monitor登记后经传输发送
// @Author  yr  2025/3/21
// @Update  yr  2025/6/20
package msgbus

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/dto"
	"github.com/njtc406/emberrpc/rpc/event"
	"github.com/njtc406/emberrpc/rpc/future"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/msgenvelope"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

// MessageBus 绑定一对收发通道, 由RpcService的Connect产生,可长期持有复用
type MessageBus struct {
	sender   inf.IRpcDispatcher // 调用方通道,应答与回调从这里回流
	receiver inf.IRpcDispatcher
	monitor  inf.IMonitor
	err      error
}

func NewMessageBus(sender, receiver inf.IRpcDispatcher, mt inf.IMonitor, err error) *MessageBus {
	return &MessageBus{
		sender:   sender,
		receiver: receiver,
		monitor:  mt,
		err:      err,
	}
}

func (mb *MessageBus) GetReceiverPid() *actor.PID {
	if mb.receiver == nil {
		return nil
	}
	return mb.receiver.GetPid()
}

func (mb *MessageBus) precheck(method string) error {
	if mb.err != nil {
		return mb.err
	}
	if mb.receiver == nil {
		return def.ErrRecipientUnreachable
	}
	// Api前缀方法只允许本地调用,发送前拦截,不做任何序列化
	if !mb.receiver.IsLocal() && isLocalOnly(method) {
		return def.ErrMethodLocalOnly
	}
	return nil
}

func isLocalOnly(method string) bool {
	return strings.HasPrefix(method, def.MethodPrefixApi) || strings.HasPrefix(method, def.MethodPrefixApi2)
}

// deadlineTimeout ctx带截止时间才返回正值
func deadlineTimeout(ctx context.Context) time.Duration {
	if ctx == nil {
		return 0
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}

func (mb *MessageBus) newEnvelope(ctx context.Context, method string, in interface{}, needResp bool) inf.IEnvelope {
	envelope := msgenvelope.NewMsgEnvelope(ctx)
	envelope.SetMethod(method)
	envelope.SetRequest(in)
	envelope.SetNeedResponse(needResp)
	if mb.sender != nil {
		envelope.SetSenderPid(mb.sender.GetPid())
		envelope.SetDispatcher(mb.sender)
	}
	envelope.SetReceiverPid(mb.receiver.GetPid())
	return envelope
}

// isSelfCall 调用方就是目标端点, 此时调用方goroutine即目标工作线程,入队会死锁
func (mb *MessageBus) isSelfCall() bool {
	return mb.sender != nil && mb.sender.IsLocal() && mb.receiver.IsLocal() &&
		mb.receiver.GetPid().Equal(mb.sender.GetPid())
}

func (mb *MessageBus) deliver(envelope inf.IEnvelope) error {
	if mb.isSelfCall() {
		if invoker, ok := mb.receiver.(inf.IInlineInvoker); ok {
			return invoker.Invoke(envelope)
		}
	}
	return mb.receiver.SendRequest(envelope)
}

// callWithFuture 发起一次需要应答的调用, 返回的future是唯一的结果出口
// 本地调用不进monitor,信封全程归被调方持有; 远程调用由monitor按reqId认领
func (mb *MessageBus) callWithFuture(ctx context.Context, method string, in interface{}, timeout time.Duration) *future.Future {
	fut := future.New()
	if err := mb.precheck(method); err != nil {
		fut.Complete(nil, err)
		return fut
	}

	envelope := mb.newEnvelope(ctx, method, in, true)
	envelope.SetFuture(fut)

	if mb.receiver.IsLocal() {
		if timeout > 0 {
			t := time.AfterFunc(timeout, func() {
				fut.Complete(nil, def.ErrRPCCallTimeout)
			})
			fut.OnComplete(func(interface{}, error) { t.Stop() })
		}
		if err := mb.deliver(envelope); err != nil {
			// 投递失败,信封没有进入邮箱,在这里终结
			envelope.SetError(err)
			msgenvelope.Complete(envelope)
		}
		return fut
	}

	mt := mb.monitor
	reqId := mt.GenSeq()
	envelope.SetReqId(reqId)
	envelope.SetTimeout(timeout)
	mt.Add(envelope)

	// future先完成(取消等场景)时信封还挂在monitor上,认领后回收
	fut.OnComplete(func(interface{}, error) {
		if e := mt.Remove(reqId); e != nil {
			e.Release()
		}
	})

	if err := mb.receiver.SendRequest(envelope); err != nil {
		log.SysLogger.WithContext(envelope.GetContext()).Errorf("send request[%s] to %s failed: %v",
			method, mb.receiver.GetPid().String(), err)
		if e := mt.Remove(reqId); e != nil {
			e.SetError(err)
			msgenvelope.Complete(e)
		}
	}
	return fut
}

// Call 同步调用, 总是有界等待:无ctx截止时间时使用默认超时
func (mb *MessageBus) Call(ctx context.Context, method string, in, out interface{}) error {
	if out != nil {
		if err := checkOutParam(out); err != nil {
			return err
		}
	}

	timeout := deadlineTimeout(ctx)
	if timeout <= 0 {
		timeout = def.DefaultRpcTimeout
	}

	resp, err := mb.callWithFuture(ctx, method, in, timeout).Result()
	if err != nil {
		return err
	}
	if out == nil || resp == nil {
		return nil
	}
	return copyOut(resp, out)
}

// CallWithFuture 返回future由调用方自行等待, 没有ctx截止时间就不设超时
func (mb *MessageBus) CallWithFuture(ctx context.Context, method string, in interface{}) *future.Future {
	return mb.callWithFuture(ctx, method, in, deadlineTimeout(ctx))
}

// AsyncCall 异步调用, 回调回到调用方端点的工作线程执行
// 返回的取消函数只放弃本方回调,不撤回已发出的调用
func (mb *MessageBus) AsyncCall(ctx context.Context, method string, in interface{}, callbacks ...dto.CompletionFunc) (dto.CancelRpc, error) {
	if len(callbacks) == 0 {
		return dto.EmptyCancelRpc, def.ErrCallbacksIsEmpty
	}
	if err := mb.precheck(method); err != nil {
		return dto.EmptyCancelRpc, err
	}

	fut := mb.callWithFuture(ctx, method, in, deadlineTimeout(ctx))

	caller := mb.sender
	fut.OnComplete(func(resp interface{}, err error) {
		task := func() {
			for _, cb := range callbacks {
				cb(resp, err)
			}
		}
		if caller == nil || !caller.IsLocal() {
			task()
			return
		}
		evt := event.NewUserEvent(def.SysEventTask, task)
		if perr := caller.PostMessage(evt); perr != nil {
			// 调用方已经停止,只能就地执行
			evt.Release()
			task()
		}
	})

	return func() {
		fut.Complete(nil, def.ErrRPCCallCanceled)
	}, nil
}

// Send 单向调用, 不关心结果
func (mb *MessageBus) Send(ctx context.Context, method string, in interface{}) error {
	if err := mb.precheck(method); err != nil {
		return err
	}

	envelope := mb.newEnvelope(ctx, method, in, false)
	if mb.isSelfCall() {
		if invoker, ok := mb.receiver.(inf.IInlineInvoker); ok {
			return invoker.Invoke(envelope)
		}
	}
	// 本地由接收方回收信封,远程由发送器回收
	return mb.receiver.SendRequestAndRelease(envelope)
}

func checkOutParam(out interface{}) error {
	switch out.(type) {
	case []interface{}:
		for i, v := range out.([]interface{}) {
			if !writable(v) {
				log.SysLogger.Errorf("multi out call: the %d param must be pointer, got %T", i, v)
				return def.ErrOutputParamNotMatch
			}
		}
	default:
		if !writable(out) {
			log.SysLogger.Errorf("single out call: out param must be pointer, got %T", out)
			return def.ErrOutputParamNotMatch
		}
	}
	return nil
}

// writable 出参必须是指针, copyOne依赖Elem().Set写回
func writable(v interface{}) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Ptr
}

// copyOut 把应答复制进出参, 支持单值与[]interface{}多值两种形态
func copyOut(resp, out interface{}) error {
	respList, multi := resp.([]interface{})
	if multi {
		outs, ok := out.([]interface{})
		if !ok || len(outs) != len(respList) {
			return def.ErrOutputParamNotMatch
		}
		for i, v := range outs {
			if err := copyOne(respList[i], v); err != nil {
				return err
			}
		}
		return nil
	}
	return copyOne(resp, out)
}

func copyOne(resp, out interface{}) error {
	if resp == nil {
		return nil
	}
	respType := reflect.TypeOf(resp)
	if respType.Kind() == reflect.Ptr {
		respType = respType.Elem()
	}
	outType := reflect.TypeOf(out)
	if outType.Kind() == reflect.Ptr {
		outType = outType.Elem()
	}
	if outType != respType {
		log.SysLogger.Errorf("call out param type not match, expected %v but got %v", respType, outType)
		return def.ErrOutputParamNotMatch
	}
	respVal := reflect.ValueOf(resp)
	if respVal.Kind() == reflect.Ptr {
		respVal = respVal.Elem()
	}
	reflect.ValueOf(out).Elem().Set(respVal)
	return nil
}
