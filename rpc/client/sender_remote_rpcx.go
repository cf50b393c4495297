// Package client
// @Title  rpcx发送器
// @Description  点对点直连,相比nats可以感知对方是否接收成功
// @Author  yr  2025/3/18
// @Update  yr  2025/6/20
package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/smallnest/rpcx/client"
	"github.com/smallnest/rpcx/protocol"
	"github.com/smallnest/rpcx/share"

	"github.com/njtc406/emberrpc/rpc/def"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

const rpcxConnNum = 4

type rpcxSender struct {
	rpcClients []client.XClient
	i          atomic.Int64
}

func newRpcxSender(addr string, _ inf.IMonitor) (inf.IRpcSender, error) {
	d, err := client.NewPeer2PeerDiscovery("tcp@"+addr, "")
	if err != nil {
		return nil, def.ErrRpcConnectionFailed
	}

	var clients []client.XClient
	for i := 0; i < rpcxConnNum; i++ {
		rpcClient := client.NewXClient("EmberListener", client.Failtry, client.RandomSelect, d, client.Option{
			Retries:             3,
			RPCPath:             share.DefaultRPCPath,
			ConnectTimeout:      def.DefaultConnectTimeout,
			SerializeType:       protocol.MsgPack,
			CompressType:        protocol.None,
			BackupLatency:       100 * time.Millisecond,
			MaxWaitForHeartbeat: 30 * time.Second,
			TCPKeepAlivePeriod:  time.Minute,
			TimeToDisallow:      time.Minute,
		})
		clients = append(clients, rpcClient)
	}

	log.SysLogger.Debugf("create rpcx sender success: %s", addr)
	return &rpcxSender{rpcClients: clients}, nil
}

func (rc *rpcxSender) Close() {
	if rc.IsClosed() {
		return
	}
	for _, rpcClient := range rc.rpcClients {
		_ = rpcClient.Close()
	}
	rc.rpcClients = nil
}

func (rc *rpcxSender) IsClosed() bool {
	return len(rc.rpcClients) == 0
}

// send 只代表消息送达对方节点,应答由对方另发消息并经monitor关联
func (rc *rpcxSender) send(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	if rc.IsClosed() {
		return def.ErrSenderClosed
	}

	ctx := envelope.GetContext()
	if _, ok := ctx.Deadline(); !ok {
		newCtx, cancel := context.WithTimeout(ctx, def.DefaultConnectTimeout)
		defer cancel()
		ctx = newCtx
	}

	msg, err := envelope.ToMessage()
	if err != nil {
		return err
	}

	// 轮流使用连接
	rpcClient := rc.rpcClients[rc.i.Add(1)%int64(len(rc.rpcClients))]

	call, err := rpcClient.Go(ctx, "RPCCall", msg, nil, make(chan *client.Call, 1))
	if err != nil {
		log.SysLogger.WithContext(ctx).Errorf("send message to %s error: %v", dispatcher.GetPid().String(), err)
		return def.ErrRpcConnectionFailed
	}
	select {
	case <-call.Done:
		if call.Error != nil {
			log.SysLogger.WithContext(ctx).Errorf("send message to %s error: %v", dispatcher.GetPid().String(), call.Error)
			return def.ErrRpcConnectionFailed
		}
	case <-ctx.Done():
		log.SysLogger.WithContext(ctx).Errorf("send message to %s timeout", dispatcher.GetPid().String())
		return def.ErrRpcConnectionFailed
	}
	return nil
}

func (rc *rpcxSender) SendRequest(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	// 信封仍由monitor持有,不能释放
	return rc.send(dispatcher, envelope)
}

func (rc *rpcxSender) SendRequestAndRelease(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	defer envelope.Release()
	return rc.send(dispatcher, envelope)
}

func (rc *rpcxSender) SendResponse(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	defer envelope.Release()
	return rc.send(dispatcher, envelope)
}
