// Package core
// @Title  端点运行时
// @Description  生命周期: Created -> Starting -> Started -> Stopping -> Terminated
// 所有钩子和业务方法都在邮箱worker(主线程)中执行
// @Author  yr  2025/3/17
// @Update  yr  2025/6/20
package core

import (
	"fmt"
	"sync/atomic"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/event"
	"github.com/njtc406/emberrpc/rpc/future"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/mailbox"
	"github.com/njtc406/emberrpc/rpc/utils/asynclib"
	"github.com/njtc406/emberrpc/rpc/utils/log"
	"github.com/njtc406/emberrpc/rpc/utils/timer"
)

type Endpoint struct {
	pid  *actor.PID
	name string

	src   inf.IEndpointHandler // 外层的用户结构
	owner inf.IEndpointOwner

	status      int32
	startFailed int32
	stopOnce    int32
	stopCause   atomic.Value // error

	mailbox        inf.IMailbox
	methodMgr      *MethodMgr
	executor       *MainThreadExecutor
	scheduler      *timer.Scheduler
	terminationFut *future.Future
	logger         log.ILogger
}

// 默认钩子,用户结构按需覆盖

func (ep *Endpoint) OnInit() error { return nil }

func (ep *Endpoint) OnStart() error { return nil }

func (ep *Endpoint) OnStop() *future.Future { return nil }

// Init 注册期初始化, 反射扫描src的方法并编译方法表
func (ep *Endpoint) Init(name string, src inf.IEndpointHandler, owner inf.IEndpointOwner) error {
	ep.name = name
	ep.src = src
	ep.owner = owner
	ep.status = def.EndpointStatusCreated
	ep.terminationFut = future.New()
	ep.methodMgr = NewMethodMgr()
	ep.mailbox = mailbox.NewDefaultMailbox(ep)
	ep.executor = &MainThreadExecutor{ep: ep}
	ep.scheduler = timer.NewScheduler(ep.emitTimer)
	ep.logger = log.SysLogger

	if err := registerMethods(ep.methodMgr, src, name); err != nil {
		return err
	}
	return src.OnInit()
}

// IEndpointContainer 嵌入了Endpoint的用户结构
type IEndpointContainer interface {
	GetEndpoint() *Endpoint
}

func (ep *Endpoint) GetEndpoint() *Endpoint {
	return ep
}

func (ep *Endpoint) SetPid(pid *actor.PID) {
	ep.pid = pid
}

func (ep *Endpoint) GetPid() *actor.PID {
	return ep.pid
}

func (ep *Endpoint) GetName() string {
	return ep.name
}

func (ep *Endpoint) GetStatus() int32 {
	return atomic.LoadInt32(&ep.status)
}

func (ep *Endpoint) IsTerminated() bool {
	return ep.GetStatus() == def.EndpointStatusTerminated
}

// IsPrivate 不含Rpc方法的端点不对远程暴露
func (ep *Endpoint) IsPrivate() bool {
	return ep.methodMgr.IsPrivate()
}

func (ep *Endpoint) GetTerminationFuture() *future.Future {
	return ep.terminationFut
}

func (ep *Endpoint) GetMainThreadExecutor() *MainThreadExecutor {
	return ep.executor
}

func (ep *Endpoint) GetLogger() log.ILogger {
	return ep.logger
}

// SetLogger 替换端点私有日志, 不设置时使用SysLogger
func (ep *Endpoint) SetLogger(logger log.ILogger) {
	if logger != nil {
		ep.logger = logger
	}
}

// Start 启动worker并投递启动信号, 重复调用返回ErrEndpointHadStarted
// 启动信号先于一切业务消息入队,OnStart一定先执行
func (ep *Endpoint) Start() error {
	if !atomic.CompareAndSwapInt32(&ep.status, def.EndpointStatusCreated, def.EndpointStatusStarting) {
		return def.ErrEndpointHadStarted
	}
	ep.mailbox.Start()
	return ep.mailbox.PostMessage(event.NewSysEvent(def.SysEventStart, nil))
}

// CloseAsync 触发异步停止,可重复调用,只有第一次生效
func (ep *Endpoint) CloseAsync() *future.Future {
	if !atomic.CompareAndSwapInt32(&ep.stopOnce, 0, 1) {
		return ep.terminationFut
	}

	// 从未启动过的端点直接终止,不执行任何钩子
	if atomic.CompareAndSwapInt32(&ep.status, def.EndpointStatusCreated, def.EndpointStatusTerminated) {
		ep.mailbox.Close()
		ep.scheduler.Stop()
		ep.owner.Deregister(ep.pid)
		ep.terminationFut.Complete(nil, nil)
		return ep.terminationFut
	}

	evt := event.NewSysEvent(def.SysEventTerminate, nil)
	if err := ep.mailbox.PostMessage(evt); err != nil {
		log.SysLogger.Warnf("endpoint[%s] post terminate failed: %v", ep.name, err)
		evt.Release()
	}
	return ep.terminationFut
}

// PostMessage 投递入口, 所有dispatcher最终都走到这里
func (ep *Endpoint) PostMessage(e inf.IEvent) error {
	if e.GetPriority() != def.PrioritySys {
		if ep.GetStatus() == def.EndpointStatusCreated {
			return def.ErrEndpointNotStarted
		}
		if atomic.LoadInt32(&ep.startFailed) == 1 {
			return def.ErrEndpointNotStarted
		}
	}
	if err := ep.mailbox.PostMessage(e); err != nil {
		switch err {
		case def.ErrMailboxSuspended, def.ErrMailboxClosed:
			return def.ErrRecipientUnreachable
		}
		return err
	}
	return nil
}

// InvokeMessage 邮箱worker的消费入口
func (ep *Endpoint) InvokeMessage(e inf.IEvent) {
	if envelope, ok := e.(inf.IEnvelope); ok {
		if envelope.IsReply() {
			ep.handleResponse(envelope)
			return
		}
		ep.invokeRequest(envelope)
		return
	}

	evt, ok := e.(*event.Event)
	if !ok {
		log.SysLogger.Errorf("endpoint[%s] unknown event: %T", ep.name, e)
		return
	}
	defer evt.Release()

	switch evt.Type {
	case def.SysEventStart:
		ep.processStart()
	case def.SysEventTerminate:
		cause, _ := evt.Data.(error)
		ep.processTerminate(cause)
	case def.SysEventFinalize:
		cause, _ := evt.Data.(error)
		ep.processFinalize(cause)
	case def.SysEventTask:
		if fn, ok := evt.Data.(func()); ok {
			fn()
		}
	case def.SysEventTimer:
		if t, ok := evt.Data.(*timer.Timer); ok {
			t.Do()
		}
	default:
		log.SysLogger.Errorf("endpoint[%s] unknown event type: %d", ep.name, evt.Type)
	}
}

// invokeRequest 启动失败/已终止的端点只回拒绝应答
func (ep *Endpoint) invokeRequest(envelope inf.IEnvelope) {
	if atomic.LoadInt32(&ep.startFailed) == 1 || ep.GetStatus() == def.EndpointStatusCreated {
		ep.reject(envelope, def.ErrEndpointNotStarted)
		return
	}
	if ep.GetStatus() == def.EndpointStatusTerminated {
		ep.reject(envelope, def.ErrRecipientUnreachable)
		return
	}
	ep.handleRequest(envelope)
}

func (ep *Endpoint) reject(envelope inf.IEnvelope, err error) {
	envelope.SetResponse(nil)
	envelope.SetError(err)
	ep.doResponse(envelope)
}

func (ep *Endpoint) processStart() {
	err := ep.safeOnStart()
	if err != nil {
		ep.logger.Errorf("endpoint[%s] start failed: %v", ep.name, err)
		atomic.StoreInt32(&ep.startFailed, 1)
		atomic.StoreInt32(&ep.stopOnce, 1)
		ep.stopCause.Store(err)
		ep.processTerminate(err)
		return
	}
	atomic.StoreInt32(&ep.status, def.EndpointStatusStarted)
	ep.logger.Infof("endpoint[%s] started, pid: %s", ep.name, ep.pid.String())
}

func (ep *Endpoint) safeOnStart() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", def.ErrHandleMessagePanic, r)
		}
	}()
	return ep.src.OnStart()
}

// processTerminate 终止信号,只处理一次
// 挂起邮箱后,此前已入队的消息仍会在STOPPING期间执行完
func (ep *Endpoint) processTerminate(cause error) {
	status := ep.GetStatus()
	if status == def.EndpointStatusStopping || status == def.EndpointStatusTerminated {
		return
	}
	atomic.StoreInt32(&ep.status, def.EndpointStatusStopping)
	if cause != nil {
		ep.stopCause.Store(cause)
	}
	ep.mailbox.Suspend()

	stopFut := ep.safeOnStop()
	if stopFut == nil {
		stopFut = future.Completed(nil, nil)
	}
	stopFut.OnComplete(func(_ interface{}, err error) {
		// 可能在任意协程完成,回邮箱收尾
		if err != nil && cause == nil {
			cause = err
		}
		evt := event.NewSysEvent(def.SysEventFinalize, cause)
		if postErr := ep.mailbox.PostMessage(evt); postErr != nil {
			log.SysLogger.Errorf("endpoint[%s] post finalize failed: %v", ep.name, postErr)
			evt.Release()
		}
	})
}

func (ep *Endpoint) safeOnStop() (fut *future.Future) {
	defer func() {
		if r := recover(); r != nil {
			ep.logger.Errorf("endpoint[%s] on stop panic: %v", ep.name, r)
			fut = future.Completed(nil, fmt.Errorf("%w: %v", def.ErrHandleMessagePanic, r))
		}
	}()
	return ep.src.OnStop()
}

func (ep *Endpoint) processFinalize(cause error) {
	if ep.GetStatus() == def.EndpointStatusTerminated {
		return
	}
	atomic.StoreInt32(&ep.status, def.EndpointStatusTerminated)
	ep.mailbox.Close()
	ep.scheduler.Stop()
	ep.owner.Deregister(ep.pid)

	// worker自身不能同步等待自己退出
	_ = asynclib.Go(func() {
		ep.mailbox.Stop()
	})

	if cause == nil {
		if v := ep.stopCause.Load(); v != nil {
			cause, _ = v.(error)
		}
	}
	ep.terminationFut.Complete(nil, cause)
	ep.logger.Infof("endpoint[%s] terminated, cause: %v", ep.name, cause)
}

// EscalateFailure 邮箱worker兜底的panic出口
func (ep *Endpoint) EscalateFailure(reason interface{}, e inf.IEvent) {
	ep.owner.ReportFailure(ep.pid, fmt.Errorf("%w: %v", def.ErrHandleMessagePanic, reason))
}

func (ep *Endpoint) emitTimer(t *timer.Timer) {
	evt := event.NewUserEvent(def.SysEventTimer, t)
	if err := ep.PostMessage(evt); err != nil {
		// 端点挂起/终止后的到期任务直接丢弃
		log.SysLogger.Debugf("endpoint[%s] drop timer %d: %v", ep.name, t.Id, err)
		evt.Release()
	}
}
