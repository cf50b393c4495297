// Package main
// @Title  集群节点示例
// @Description  读取configs/node.yaml启动监听,信号触发优雅停止
// @Author  yr  2025/4/1
// @Update  yr  2025/6/20
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/njtc406/emberrpc/example/comm"
	"github.com/njtc406/emberrpc/rpc/config"
	"github.com/njtc406/emberrpc/rpc/service"
	"github.com/njtc406/emberrpc/rpc/utils/asynclib"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

func main() {
	config.Init("./configs")
	log.Init(config.Conf.SystemLogger, config.IsDebug())
	defer log.Close()
	asynclib.InitAntsPool(config.Conf.NodeConf.AntsPoolSize)
	defer asynclib.Release()

	svc := service.NewRpcService(config.Conf.ClusterConf)
	if err := svc.Start(); err != nil {
		log.SysLogger.Fatalf("start rpc service failed: %v", err)
	}

	if _, err := svc.StartEndpoint("calc", &comm.CalcService{}); err != nil {
		log.SysLogger.Fatalf("start calc endpoint failed: %v", err)
	}

	asynclib.Go(func() {
		for report := range svc.Failures() {
			log.SysLogger.Errorf("unhandled failure from %s: %v", report.Pid.String(), report.Err)
		}
	})

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	svc.Stop()
}
