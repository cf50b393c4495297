// Package asynclib
// @Title  异步执行
// @Description  使用协程池执行任务,防止瞬间创建大量协程
// @Author  yr  2025/3/13
// @Update  yr  2025/3/13
package asynclib

import (
	"fmt"
	"runtime"

	"github.com/panjf2000/ants/v2"
)

var antsPool *ants.Pool

func InitAntsPool(size int) {
	if antsPool == nil && size > 0 {
		antsPool = NewAntsPool(runtime.NumCPU()*size, ants.WithPreAlloc(true))
	}
}

// NewAntsPool 创建协程池
func NewAntsPool(size int, options ...ants.Option) *ants.Pool {
	p, err := ants.NewPool(size, options...)
	if err != nil {
		panic(err)
	}
	return p
}

func Go(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("goroutine exec func failed, err:%v", r)
		}
	}()
	if antsPool == nil {
		InitAntsPool(1)
	}
	return antsPool.Submit(f)
}

func Release() {
	if antsPool != nil {
		antsPool.Release()
		antsPool = nil
	}
}
