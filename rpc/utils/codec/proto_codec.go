// Package codec
// @Title  protobuf编解码器
// @Description  desc
// @Author  yr  2025/3/14
// @Update  yr  2025/3/14
package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/njtc406/emberrpc/rpc/def"
)

func init() {
	RegisterCodec(NewProtoCodec())
}

type protoCodec struct {
	opts proto.MarshalOptions
}

func NewProtoCodec() ICodec {
	return &protoCodec{
		opts: proto.MarshalOptions{
			AllowPartial:  true,
			Deterministic: true,
		},
	}
}

func (c *protoCodec) Type() int32 {
	return ProtoBuf
}

func (c *protoCodec) Encode(msg interface{}) ([]byte, string, error) {
	pb, ok := msg.(proto.Message)
	if !ok {
		return nil, "", fmt.Errorf("protoCodec: msg must be proto.Message")
	}
	data, err := c.opts.Marshal(pb)
	if err != nil {
		return nil, "", err
	}
	return data, getProtoTypeName(pb), nil
}

func (c *protoCodec) Decode(typeName string, data []byte) (interface{}, error) {
	t, err := getProtoType(typeName)
	if err != nil {
		return nil, err
	}
	msg := t.New().Interface()
	return msg, proto.Unmarshal(data, msg)
}

func isProtoMessage(msg interface{}) bool {
	_, ok := msg.(proto.Message)
	return ok
}

func getProtoTypeName(pb proto.Message) string {
	return string(pb.ProtoReflect().Descriptor().FullName())
}

func getProtoType(typeName string) (protoreflect.MessageType, error) {
	t, err := protoregistry.GlobalTypes.FindMessageByName(protoreflect.FullName(typeName))
	if err != nil {
		return nil, def.ErrTypeNotRegistered
	}
	return t, nil
}
