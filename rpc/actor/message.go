// Package actor
// @Title  rpc线上消息
// @Description  跨节点传输的消息体,载荷已按类型编码为字节
// @Author  yr  2025/3/13
// @Update  yr  2025/6/20
package actor

import "fmt"

// Message 跨节点消息, 整体用msgpack编码
type Message struct {
	TypeId        int32             `msgpack:"type_id"`   // 载荷编解码器id
	TypeName      string            `msgpack:"type_name"` // 载荷类型名
	SenderPid     *PID              `msgpack:"sender_pid"`
	ReceiverPid   *PID              `msgpack:"receiver_pid"`
	Method        string            `msgpack:"method"`
	Request       []byte            `msgpack:"request"`
	Response      []byte            `msgpack:"response"`
	Err           string            `msgpack:"err"`
	MessageHeader map[string]string `msgpack:"message_header"`
	Reply         bool              `msgpack:"reply"` // 是否为应答
	ReqId         uint64            `msgpack:"req_id"`
	NeedResp      bool              `msgpack:"need_resp"`
}

func (m *Message) GetSenderPid() *PID {
	if m == nil {
		return nil
	}
	return m.SenderPid
}

func (m *Message) GetReceiverPid() *PID {
	if m == nil {
		return nil
	}
	return m.ReceiverPid
}

func (m *Message) GetMessageHeader() map[string]string {
	if m == nil {
		return nil
	}
	return m.MessageHeader
}

func (m *Message) String() string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("reqId:%d method:%s sender:%s receiver:%s reply:%v needResp:%v err:%s",
		m.ReqId, m.Method, m.SenderPid.String(), m.ReceiverPid.String(), m.Reply, m.NeedResp, m.Err)
}
