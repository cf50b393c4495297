// Package gr
// @Title  grpc消息接收
// @Description  服务描述手工声明,载荷经msgpack编码
// @Author  yr  2025/3/19
// @Update  yr  2025/6/20
package gr

import (
	"context"

	"google.golang.org/grpc"

	"github.com/njtc406/emberrpc/rpc/actor"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/remote/grpcwire"
)

type emberListenerServer interface {
	RPCCall(ctx context.Context, req *actor.Message) (*actor.Message, error)
}

// EmberListener grpc服务对象, 发送端按单向消息投递,应答走独立消息
type EmberListener struct {
	handler inf.IRemoteHandler
}

func (l *EmberListener) RPCCall(_ context.Context, req *actor.Message) (*actor.Message, error) {
	if err := l.handler.Handle(req); err != nil {
		return nil, err
	}
	return &actor.Message{}, nil
}

func rpcCallHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(actor.Message)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(emberListenerServer).RPCCall(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: grpcwire.MethodRPCCall,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(emberListenerServer).RPCCall(ctx, req.(*actor.Message))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: grpcwire.ServiceName,
	HandlerType: (*emberListenerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RPCCall",
			Handler:    rpcCallHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "emberrpc",
}
