// Package event
// @Title  邮箱事件
// @Description  控制信号/任务/定时器统一包装成事件进入邮箱
// @Author  yr  2025/3/15
// @Update  yr  2025/6/20
package event

import (
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/dto"
	"github.com/njtc406/emberrpc/rpc/utils/pool"
)

var eventPool = pool.NewExtendedPool[*Event](128, func() *Event {
	return &Event{}
})

// Event 非rpc的邮箱事件
type Event struct {
	dto.DataRef
	Type     int32
	Priority int32
	Data     interface{}
}

func NewEvent() *Event {
	return eventPool.Get()
}

// NewSysEvent 控制事件, 不受端点挂起影响
func NewSysEvent(typ int32, data interface{}) *Event {
	e := eventPool.Get()
	e.Type = typ
	e.Priority = def.PrioritySys
	e.Data = data
	return e
}

// NewUserEvent 业务事件
func NewUserEvent(typ int32, data interface{}) *Event {
	e := eventPool.Get()
	e.Type = typ
	e.Priority = def.PriorityUser
	e.Data = data
	return e
}

func (e *Event) Reset() {
	e.Type = 0
	e.Priority = 0
	e.Data = nil
}

func (e *Event) GetType() int32 {
	return e.Type
}

func (e *Event) GetPriority() int32 {
	return e.Priority
}

func (e *Event) Release() {
	eventPool.Put(e)
}
