// Package grpcwire
// @Title  grpc线协议
// @Description  监听服务的方法常量与msgpack编码,收发两端共用
// @Author  yr  2025/3/19
// @Update  yr  2025/6/20
package grpcwire

import (
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/grpc/encoding"
)

const (
	ServiceName   = "emberrpc.EmberListener"
	MethodRPCCall = "/emberrpc.EmberListener/RPCCall"
	CodecName     = "msgpack"
)

func init() {
	encoding.RegisterCodec(msgpackCodec{})
}

type msgpackCodec struct{}

func (msgpackCodec) Marshal(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}

func (msgpackCodec) Name() string {
	return CodecName
}
