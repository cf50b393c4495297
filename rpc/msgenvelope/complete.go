// Package msgenvelope
// @Title  调用完成
// @Description  desc
// @Author  yr  2025/3/16
// @Update  yr  2025/6/20
package msgenvelope

import (
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
)

// Complete 调用结果就绪后的统一出口
// future只会被应答/超时/取消中最先到达的一方完成,落败方的结果直接作废
func Complete(e inf.IEnvelope) {
	e.SetReply()
	fut := e.GetFuture()
	if fut != nil {
		fut.Complete(e.GetResponse(), e.GetError())
	}
	e.Release()
}
