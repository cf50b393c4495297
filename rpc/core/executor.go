// Package core
// @Title  主线程执行器
// @Description  把任务交回端点的邮箱worker执行,保证与业务方法互斥
// @Author  yr  2025/3/17
// @Update  yr  2025/6/20
package core

import (
	"time"

	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/event"
)

type MainThreadExecutor struct {
	ep *Endpoint
}

// Execute 在端点主线程执行fn, 端点未启动/已停止时返回错误
func (ex *MainThreadExecutor) Execute(fn func()) error {
	evt := event.NewUserEvent(def.SysEventTask, fn)
	if err := ex.ep.PostMessage(evt); err != nil {
		evt.Release()
		return err
	}
	return nil
}

// Schedule 延迟d后在主线程执行fn, 返回timerId用于取消
func (ex *MainThreadExecutor) Schedule(d time.Duration, fn func()) (uint64, error) {
	if err := ex.checkRunning(); err != nil {
		return 0, err
	}
	return ex.ep.scheduler.AfterFunc(d, fn), nil
}

// ScheduleTicker 固定间隔重复执行
func (ex *MainThreadExecutor) ScheduleTicker(d time.Duration, fn func()) (uint64, error) {
	if err := ex.checkRunning(); err != nil {
		return 0, err
	}
	return ex.ep.scheduler.TickerFunc(d, fn), nil
}

// ScheduleCron cron表达式调度
func (ex *MainThreadExecutor) ScheduleCron(spec string, fn func()) (uint64, error) {
	if err := ex.checkRunning(); err != nil {
		return 0, err
	}
	return ex.ep.scheduler.CronFunc(spec, fn)
}

func (ex *MainThreadExecutor) CancelTimer(timerId uint64) bool {
	return ex.ep.scheduler.Cancel(timerId)
}

func (ex *MainThreadExecutor) checkRunning() error {
	switch ex.ep.GetStatus() {
	case def.EndpointStatusCreated:
		return def.ErrEndpointNotStarted
	case def.EndpointStatusStopping, def.EndpointStatusTerminated:
		return def.ErrScheduleAfterStopped
	}
	return nil
}
