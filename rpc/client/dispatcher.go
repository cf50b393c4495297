// Package client
// @Title  消息通道
// @Description  指向某个端点的发送通道,本地直达邮箱,远程经由对应传输的发送器
// @Author  yr  2025/3/18
// @Update  yr  2025/6/20
package client

import (
	"sync/atomic"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/def"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
)

type Dispatcher struct {
	closed  int32
	pid     *actor.PID
	channel inf.IMailboxChannel // 本地端点的邮箱,远程为nil
	sender  inf.IRpcSender
}

// NewLocalDispatcher 指向本进程端点
func NewLocalDispatcher(pid *actor.PID, channel inf.IMailboxChannel, sender inf.IRpcSender) *Dispatcher {
	return &Dispatcher{pid: pid, channel: channel, sender: sender}
}

// NewRemoteDispatcher 指向远程端点
func NewRemoteDispatcher(pid *actor.PID, sender inf.IRpcSender) *Dispatcher {
	return &Dispatcher{pid: pid, sender: sender}
}

func (d *Dispatcher) GetPid() *actor.PID {
	return d.pid
}

func (d *Dispatcher) IsLocal() bool {
	return d.channel != nil
}

func (d *Dispatcher) PostMessage(e inf.IEvent) error {
	if d.channel == nil {
		return def.ErrRecipientUnreachable
	}
	return d.channel.PostMessage(e)
}

// Invoke 在当前goroutine上直接执行, 仅自调用(调用方就是目标端点的工作线程)时使用
func (d *Dispatcher) Invoke(e inf.IEvent) error {
	invoker, ok := d.channel.(inf.IMessageInvoker)
	if !ok {
		return d.PostMessage(e)
	}
	invoker.InvokeMessage(e)
	return nil
}

func (d *Dispatcher) SendRequest(envelope inf.IEnvelope) error {
	if d.IsClosed() {
		return def.ErrRecipientUnreachable
	}
	return d.sender.SendRequest(d, envelope)
}

func (d *Dispatcher) SendRequestAndRelease(envelope inf.IEnvelope) error {
	if d.IsClosed() {
		envelope.Release()
		return def.ErrRecipientUnreachable
	}
	return d.sender.SendRequestAndRelease(d, envelope)
}

func (d *Dispatcher) SendResponse(envelope inf.IEnvelope) error {
	if d.IsClosed() {
		return def.ErrRecipientUnreachable
	}
	return d.sender.SendResponse(d, envelope)
}

func (d *Dispatcher) IsClosed() bool {
	return atomic.LoadInt32(&d.closed) == 1 || d.sender.IsClosed()
}

func (d *Dispatcher) Close() {
	atomic.StoreInt32(&d.closed, 1)
}
