// Package client
// @Title  grpc发送器
// @Description  desc
// @Author  yr  2025/3/18
// @Update  yr  2025/6/20
package client

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/def"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/remote/grpcwire"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

type grpcSender struct {
	conn *grpc.ClientConn
}

func newGrpcSender(addr string, _ inf.IMonitor) (inf.IRpcSender, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(grpcwire.CodecName)),
	)
	if err != nil {
		log.SysLogger.Errorf("grpc sender dial error: %v", err)
		return nil, def.ErrRpcConnectionFailed
	}

	log.SysLogger.Debugf("create grpc sender success: %s", addr)
	return &grpcSender{conn: conn}, nil
}

func (rc *grpcSender) Close() {
	if rc.conn == nil {
		return
	}
	_ = rc.conn.Close()
	rc.conn = nil
}

func (rc *grpcSender) IsClosed() bool {
	return rc.conn == nil
}

func (rc *grpcSender) send(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
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

	var reply actor.Message
	if err = rc.conn.Invoke(ctx, grpcwire.MethodRPCCall, msg, &reply); err != nil {
		log.SysLogger.WithContext(ctx).Errorf("send message to %s error: %v", dispatcher.GetPid().String(), err)
		return def.ErrRpcConnectionFailed
	}
	return nil
}

func (rc *grpcSender) SendRequest(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	// 信封仍由monitor持有,不能释放
	return rc.send(dispatcher, envelope)
}

func (rc *grpcSender) SendRequestAndRelease(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	defer envelope.Release()
	return rc.send(dispatcher, envelope)
}

func (rc *grpcSender) SendResponse(dispatcher inf.IRpcDispatcher, envelope inf.IEnvelope) error {
	defer envelope.Release()
	return rc.send(dispatcher, envelope)
}
