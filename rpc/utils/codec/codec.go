// Package codec
// @Title  载荷编解码
// @Description  按typeId选择编解码器,跨节点的请求/应答载荷统一经由此处
// @Author  yr  2025/3/14
// @Update  yr  2025/6/20
package codec

import (
	"github.com/njtc406/emberrpc/rpc/def"
)

const (
	ProtoBuf int32 = iota
	Json
)

type ICodec interface {
	Type() int32
	Encode(msg interface{}) ([]byte, string, error)
	Decode(typeName string, data []byte) (interface{}, error)
}

var codecs = map[int32]ICodec{}

func RegisterCodec(coder ICodec) {
	codecs[coder.Type()] = coder
}

func GetCodec(typ int32) (ICodec, error) {
	c, ok := codecs[typ]
	if !ok {
		return nil, def.ErrCodecNotFound
	}
	return c, nil
}

func Encode(typ int32, msg interface{}) ([]byte, string, error) {
	if msg == nil {
		return nil, "", nil
	}
	coder, err := GetCodec(typ)
	if err != nil {
		return nil, "", err
	}
	return coder.Encode(msg)
}

func Decode(typ int32, typeName string, data []byte) (interface{}, error) {
	if len(data) == 0 || typeName == "" {
		return nil, nil
	}
	coder, err := GetCodec(typ)
	if err != nil {
		return nil, err
	}
	return coder.Decode(typeName, data)
}

// TypeOf 根据载荷类型选择编解码器
func TypeOf(msg interface{}) int32 {
	if isProtoMessage(msg) {
		return ProtoBuf
	}
	return Json
}
