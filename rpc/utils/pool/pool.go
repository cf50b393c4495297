// Package pool
// @Title  对象池
// @Description  带引用标记的对象池,重复Get/Put会直接panic暴露问题
// @Author  yr  2025/3/13
// @Update  yr  2025/6/20
package pool

import (
	"sync"

	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

type IPoolData interface {
	inf.IReset
	inf.IDataDef
}

type Pool[T inf.IReset] struct {
	c        chan T // 热点缓存
	syncPool sync.Pool
}

func NewPool[T inf.IReset](cacheSize int, newFun func() T) *Pool[T] {
	return &Pool[T]{
		c: make(chan T, cacheSize),
		syncPool: sync.Pool{
			New: func() any { return newFun() },
		},
	}
}

func (pool *Pool[T]) Get() T {
	var t T
	select {
	case t = <-pool.c:
	default:
		t = pool.syncPool.Get().(T)
	}
	t.Reset()
	return t
}

func (pool *Pool[T]) Put(data T) {
	data.Reset()
	select {
	case pool.c <- data:
	default:
		pool.syncPool.Put(data)
	}
}

type ExtendedPool[T IPoolData] struct {
	c        chan T
	syncPool sync.Pool
}

func NewExtendedPool[T IPoolData](cacheSize int, newFun func() T) *ExtendedPool[T] {
	return &ExtendedPool[T]{
		c: make(chan T, cacheSize),
		syncPool: sync.Pool{
			New: func() any { return newFun() },
		},
	}
}

func (pool *ExtendedPool[T]) Get() T {
	var data T
	select {
	case data = <-pool.c:
	default:
		data = pool.syncPool.Get().(T)
	}

	if data.IsRef() {
		log.SysLogger.Panic("pool data is in use")
	}
	data.Reset()
	data.Ref()
	return data
}

func (pool *ExtendedPool[T]) Put(data T) {
	if !data.IsRef() {
		log.SysLogger.Panic("repeatedly freeing pool data")
	}
	// 提前解引用,防止递归释放
	data.UnRef()
	data.Reset()
	// Reset可能重新标记,再解一次
	data.UnRef()

	select {
	case pool.c <- data:
	default:
		pool.syncPool.Put(data)
	}
}
