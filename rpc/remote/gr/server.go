// Package gr
// @Title  grpc监听服务
// @Description  desc
// @Author  yr  2025/3/19
// @Update  yr  2025/6/20
package gr

import (
	"net"

	"google.golang.org/grpc"

	"github.com/njtc406/emberrpc/rpc/config"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

type grpcServer struct {
	listener *EmberListener
	server   *grpc.Server
	conf     *config.RPCServer
}

func NewGrpcServer() inf.IRemoteServer {
	return &grpcServer{}
}

func (s *grpcServer) Init(handler inf.IRemoteHandler, conf *config.RPCServer, _ string) error {
	s.listener = &EmberListener{handler: handler}
	s.server = grpc.NewServer()
	s.conf = conf
	s.server.RegisterService(&serviceDesc, s.listener)
	return nil
}

func (s *grpcServer) Serve() error {
	log.SysLogger.Infof("grpc server listening at: %s", s.conf.Addr)
	lis, err := net.Listen(s.conf.Protoc, s.conf.Addr)
	if err != nil {
		return err
	}
	return s.server.Serve(lis)
}

func (s *grpcServer) Close() {
	if s.server == nil {
		return
	}
	s.server.Stop()
	s.server = nil
}
