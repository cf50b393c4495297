// Package interfaces
// @Title  邮箱接口
// @Description  desc
// @Author  yr  2025/3/12
// @Update  yr  2025/6/20
package interfaces

// IMessageInvoker 消费邮箱消息
type IMessageInvoker interface {
	InvokeMessage(evt IEvent)
	EscalateFailure(reason interface{}, evt IEvent)
}

// IMailboxChannel 消息投递接口
type IMailboxChannel interface {
	PostMessage(evt IEvent) error
}

// IMailbox 单消费者邮箱
type IMailbox interface {
	IMailboxChannel
	Start()
	Stop()
	Suspend() bool
	Resume() bool
	Close()
}
