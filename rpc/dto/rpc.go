// Package dto
// @Title  rpc相关数据结构
// @Description  desc
// @Author  yr  2025/3/12
// @Update  yr  2025/6/20
package dto

import "github.com/njtc406/logrus"

// CancelRpc 异步调用的取消函数(请注意,调用发出后是无法撤回的,只能取消回调)
type CancelRpc func()

func EmptyCancelRpc() {} // 空的取消函数

type CompletionFunc func(data interface{}, err error) // 异步回调函数

type Header map[string]string

func (header Header) Get(key string) string {
	if v, ok := header[key]; ok {
		return v
	}
	return ""
}

func (header Header) Set(key string, value string) {
	header[key] = value
}

func (header Header) Keys() []string {
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	return keys
}

func (header Header) Length() int {
	return len(header)
}

// ToMap 复制为普通map
func (header Header) ToMap() map[string]string {
	mp := make(map[string]string)
	for k, v := range header {
		mp[k] = v
	}
	return mp
}

func (header Header) ToFields() logrus.Fields {
	f := make(logrus.Fields, len(header))
	for k, v := range header {
		f[k] = v
	}
	return f
}
