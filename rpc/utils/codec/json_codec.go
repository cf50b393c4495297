// Package codec
// @Title  json编解码器
// @Description  非proto的Go类型需要先RegisterType,解码按注册的类型还原
// @Author  yr  2025/3/14
// @Update  yr  2025/6/20
package codec

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/njtc406/emberrpc/rpc/def"
)

func init() {
	RegisterCodec(NewJsonCodec())
}

type jsonCodec struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

func NewJsonCodec() ICodec {
	return &jsonCodec{types: make(map[string]reflect.Type)}
}

var defaultJsonCodec *jsonCodec

func getJsonCodec() *jsonCodec {
	if defaultJsonCodec == nil {
		c, _ := GetCodec(Json)
		defaultJsonCodec = c.(*jsonCodec)
	}
	return defaultJsonCodec
}

// RegisterType 注册可跨节点传输的Go类型, msg必须是指针
func RegisterType(msg interface{}) {
	c := getJsonCodec()
	t := reflect.TypeOf(msg)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	c.mu.Lock()
	c.types[typeNameOf(t)] = t
	c.mu.Unlock()
}

func typeNameOf(t reflect.Type) string {
	return t.PkgPath() + "." + t.Name()
}

func (j *jsonCodec) Type() int32 {
	return Json
}

func (j *jsonCodec) Encode(msg interface{}) ([]byte, string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, "", err
	}
	t := reflect.TypeOf(msg)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return data, typeNameOf(t), nil
}

func (j *jsonCodec) Decode(typeName string, data []byte) (interface{}, error) {
	j.mu.RLock()
	t, ok := j.types[typeName]
	j.mu.RUnlock()
	if !ok {
		return nil, def.ErrTypeNotRegistered
	}
	msg := reflect.New(t).Interface()
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
