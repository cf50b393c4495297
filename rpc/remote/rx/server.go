// Package rx
// @Title  rpcx监听服务
// @Description  desc
// @Author  yr  2025/3/18
// @Update  yr  2025/6/20
package rx

import (
	"github.com/smallnest/rpcx/server"

	"github.com/njtc406/emberrpc/rpc/config"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

type rpcxServer struct {
	svr      *server.Server
	listener *EmberListener
	conf     *config.RPCServer
}

func NewRpcxServer() inf.IRemoteServer {
	return &rpcxServer{}
}

func (rs *rpcxServer) Init(handler inf.IRemoteHandler, conf *config.RPCServer, _ string) error {
	rs.listener = &EmberListener{handler: handler}
	rs.svr = server.NewServer()
	rs.conf = conf
	return rs.svr.RegisterName("EmberListener", rs.listener, "")
}

func (rs *rpcxServer) Serve() error {
	log.SysLogger.Infof("rpcx server listening at: %s", rs.conf.Addr)
	return rs.svr.Serve(rs.conf.Protoc, rs.conf.Addr)
}

func (rs *rpcxServer) Close() {
	if rs.svr == nil {
		return
	}
	_ = rs.svr.Close()
	rs.svr = nil
}
