// Package remote
// @Title  远程消息入口
// @Description  各传输的监听器统一走这里,应答靠reqId从monitor认领,请求转投本地端点
// @Author  yr  2025/3/18
// @Update  yr  2025/6/20
package remote

import (
	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/dto"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/msgenvelope"
	"github.com/njtc406/emberrpc/rpc/utils/codec"
	"github.com/njtc406/emberrpc/rpc/utils/dedup"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

type MessageHandler struct {
	factory inf.IRpcSenderFactory
	monitor inf.IMonitor
	dedup   *dedup.DeDuplicator
}

func NewMessageHandler(factory inf.IRpcSenderFactory, monitor inf.IMonitor, dd *dedup.DeDuplicator) *MessageHandler {
	return &MessageHandler{
		factory: factory,
		monitor: monitor,
		dedup:   dd,
	}
}

func (h *MessageHandler) Handle(msg *actor.Message) error {
	if msg.Reply {
		return h.handleReply(msg)
	}
	return h.handleRequest(msg)
}

// handleReply 应答只会完成还在monitor中等待的调用,超时/取消后到达的应答直接丢弃
func (h *MessageHandler) handleReply(msg *actor.Message) error {
	envelope := h.monitor.Remove(msg.ReqId)
	if envelope == nil {
		log.SysLogger.WithFields(dto.Header(msg.GetMessageHeader()).ToFields()).Warnf("reply arrived after call finished, dropped: %s", msg.String())
		return nil
	}

	if len(msg.Response) > 0 {
		response, err := codec.Decode(msg.TypeId, msg.TypeName, msg.Response)
		if err != nil {
			log.SysLogger.Errorf("decode reply of reqId[%d] failed: %v", msg.ReqId, err)
			envelope.SetError(def.ErrMsgDeserializeFailed)
			msgenvelope.Complete(envelope)
			return def.ErrMsgDeserializeFailed
		}
		envelope.SetResponse(response)
	}
	envelope.SetErrStr(msg.Err)
	msgenvelope.Complete(envelope)
	return nil
}

func (h *MessageHandler) handleRequest(msg *actor.Message) error {
	receiver := msg.GetReceiverPid()
	if receiver == nil {
		log.SysLogger.Errorf("request without receiver, dropped: %s", msg.String())
		return def.ErrRecipientUnreachable
	}

	// 远程重试可能重复投递,认过的reqId直接丢弃
	if msg.NeedResp && msg.ReqId != 0 && h.dedup.Seen(receiver.GetServiceUid(), msg.ReqId) {
		log.SysLogger.WithFields(dto.Header(msg.GetMessageHeader()).ToFields()).Errorf("duplicate rpc request dropped: %s", msg.String())
		return nil
	}

	envelope, err := msgenvelope.FromMessage(msg)
	if err != nil {
		// 载荷无法解码,能回执时把错误交还调用方
		log.SysLogger.Errorf("decode request of reqId[%d] failed: %v", msg.ReqId, err)
		h.replyError(msg, envelope, def.ErrMsgDeserializeFailed)
		return def.ErrMsgDeserializeFailed
	}

	dispatcher := h.factory.GetDispatcher(receiver)
	if dispatcher == nil {
		h.replyError(msg, envelope, def.ErrRecipientUnreachable)
		return def.ErrRecipientUnreachable
	}

	if msg.NeedResp {
		// 应答通过调用方的发送通道原路返回
		envelope.SetDispatcher(h.factory.GetDispatcher(msg.GetSenderPid()))
	}

	if err = dispatcher.SendRequest(envelope); err != nil {
		envelope.SetRequest(nil)
		h.replyError(msg, envelope, err)
		return err
	}
	return nil
}

// replyError 请求无法投递时直接回错误应答, 信封在此终结
func (h *MessageHandler) replyError(msg *actor.Message, envelope inf.IEnvelope, cause error) {
	if !msg.NeedResp || msg.GetSenderPid() == nil {
		envelope.Release()
		return
	}

	envelope.SetRequest(nil)
	envelope.SetResponse(nil)
	envelope.SetError(cause)
	envelope.SetReply()
	envelope.SetReceiverPid(msg.GetSenderPid())
	envelope.SetSenderPid(msg.GetReceiverPid())

	back := h.factory.GetDispatcher(msg.GetSenderPid())
	if back == nil {
		envelope.Release()
		return
	}
	if err := back.SendResponse(envelope); err != nil {
		log.SysLogger.Errorf("send error reply of reqId[%d] failed: %v", msg.ReqId, err)
	}
}
