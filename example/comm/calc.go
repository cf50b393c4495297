// Package comm
// @Title  示例端点
// @Description  desc
// @Author  yr  2025/4/1
// @Update  yr  2025/6/20
package comm

import (
	"fmt"
	"time"

	"github.com/njtc406/emberrpc/rpc/core"
	"github.com/njtc406/emberrpc/rpc/future"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

// CalcService 演示同步/异步/单向三种调用形态
type CalcService struct {
	core.Endpoint
}

func (s *CalcService) OnStart() error {
	log.SysLogger.Infof("calc[%s] started", s.GetPid().String())
	return nil
}

func (s *CalcService) OnStop() *future.Future {
	// 模拟一段异步收尾
	fut := future.New()
	time.AfterFunc(100*time.Millisecond, func() {
		log.SysLogger.Info("calc cleanup finished")
		fut.Complete(nil, nil)
	})
	return fut
}

func (s *CalcService) RpcAdd(a, b int) (int, error) {
	return a + b, nil
}

func (s *CalcService) RpcDiv(a, b int) (int, error) {
	if b == 0 {
		return 0, fmt.Errorf("divide by zero")
	}
	return a / b, nil
}

// RpcSlowAdd 返回future, 不占用端点主线程等待
func (s *CalcService) RpcSlowAdd(a, b int) (*future.Future, error) {
	fut := future.New()
	time.AfterFunc(50*time.Millisecond, func() {
		fut.Complete(a+b, nil)
	})
	return fut, nil
}

func (s *CalcService) RpcNotify(msg string) error {
	log.SysLogger.Infof("calc notified: %s", msg)
	return nil
}

// ApiReset 只允许同进程调用
func (s *CalcService) ApiReset() error {
	log.SysLogger.Info("calc reset")
	return nil
}
