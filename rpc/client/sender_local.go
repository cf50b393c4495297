// Package client
// @Title  本地发送器
// @Description  同进程调用直达邮箱,应答通过monitor认领后完成
// @Author  yr  2025/3/18
// @Update  yr  2025/6/20
package client

import (
	"sync/atomic"

	"github.com/njtc406/emberrpc/rpc/def"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/msgenvelope"
)

type localSender struct {
	closed int32
}

func newLocalSender() inf.IRpcSender {
	return &localSender{}
}

func (lc *localSender) Close() {
	atomic.StoreInt32(&lc.closed, 1)
}

func (lc *localSender) IsClosed() bool {
	return atomic.LoadInt32(&lc.closed) == 1
}

func (lc *localSender) SendRequest(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	if lc.IsClosed() {
		return def.ErrRecipientUnreachable
	}
	return dispatcher.PostMessage(envelope)
}

func (lc *localSender) SendRequestAndRelease(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	// 本地单向调用的信封在接收端点处理后释放
	err := lc.SendRequest(dispatcher, envelope)
	if err != nil {
		envelope.Release()
	}
	return err
}

// SendResponse 本地调用不走monitor,直接完成信封上的future
// future写一次的语义保证与超时竞争时只有一方生效
func (lc *localSender) SendResponse(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	msgenvelope.Complete(envelope)
	return nil
}
