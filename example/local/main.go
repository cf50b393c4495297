// Package main
// @Title  本地调用示例
// @Description  desc
// @Author  yr  2025/4/1
// @Update  yr  2025/6/20
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/njtc406/emberrpc/example/comm"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/service"
)

func main() {
	svc := service.NewRpcService(nil)
	if err := svc.Start(); err != nil {
		panic(err)
	}
	defer svc.Stop()

	if _, err := svc.StartEndpoint("calc", &comm.CalcService{}); err != nil {
		panic(err)
	}

	fut, err := svc.Connect("ember://calc")
	if err != nil {
		panic(err)
	}
	busVal, err := fut.Result()
	if err != nil {
		panic(err)
	}
	bus := busVal.(inf.IBus)

	var sum int
	if err = bus.Call(context.Background(), "RpcAdd", []interface{}{1, 2}, &sum); err != nil {
		panic(err)
	}
	fmt.Println("1 + 2 =", sum)

	done := make(chan struct{})
	if _, err = bus.AsyncCall(context.Background(), "RpcSlowAdd", []interface{}{3, 4}, func(data interface{}, err error) {
		fmt.Println("3 + 4 =", data, err)
		close(done)
	}); err != nil {
		panic(err)
	}
	<-done

	if err = bus.Send(context.Background(), "RpcNotify", "bye"); err != nil {
		panic(err)
	}
	time.Sleep(100 * time.Millisecond)
}
