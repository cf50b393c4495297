// Package client
// @Title  nats发送器
// @Description  经broker转发,按节点/端点名主题投递
// @Author  yr  2025/3/18
// @Update  yr  2025/6/20
package client

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/njtc406/emberrpc/rpc/def"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

type natsSender struct {
	conn *nats.Conn
}

func newNatsSender(addr string, _ inf.IMonitor) (inf.IRpcSender, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.PingInterval(30 * time.Second),
		nats.MaxPingsOutstanding(3),
		nats.Timeout(def.DefaultConnectTimeout),
	}

	conn, err := nats.Connect(addr, opts...)
	if err != nil {
		log.SysLogger.Errorf("nats sender connect error: %v", err)
		return nil, def.ErrRpcConnectionFailed
	}

	log.SysLogger.Debugf("nats sender connect success: %s", addr)
	return &natsSender{conn: conn}, nil
}

func (rc *natsSender) Close() {
	if rc.conn == nil {
		return
	}
	rc.conn.Close()
	rc.conn = nil
}

func (rc *natsSender) IsClosed() bool {
	return rc.conn == nil || rc.conn.IsClosed()
}

func (rc *natsSender) send(envelope inf.IEnvelope) error {
	if rc.IsClosed() {
		return def.ErrSenderClosed
	}

	msg, err := envelope.ToMessage()
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(msg)
	if err != nil {
		return def.ErrMsgSerializeFailed
	}

	// 应答回到发送节点主题,请求走端点名主题
	receiver := envelope.GetReceiverPid()
	var topic string
	if envelope.IsReply() && receiver.GetNodeUid() != "" {
		topic = fmt.Sprintf(def.NatsNodeTopic, receiver.GetNodeUid())
	} else {
		topic = fmt.Sprintf(def.NatsEndpointTopic, receiver.GetName())
	}

	if err = rc.conn.Publish(topic, data); err != nil {
		log.SysLogger.Errorf("nats publish to %s error: %v", topic, err)
		return def.ErrRpcConnectionFailed
	}
	return nil
}

func (rc *natsSender) SendRequest(_ inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	// 信封仍由monitor持有,不能释放
	return rc.send(envelope)
}

func (rc *natsSender) SendRequestAndRelease(_ inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	defer envelope.Release()
	return rc.send(envelope)
}

func (rc *natsSender) SendResponse(_ inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	defer envelope.Release()
	return rc.send(envelope)
}
