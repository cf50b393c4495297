package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/future"
	"github.com/njtc406/emberrpc/rpc/msgenvelope"
)

func TestGenSeq(t *testing.T) {
	rm := NewRpcMonitor()
	rm.Start()
	defer rm.Stop()
	assert.NotEqual(t, rm.GenSeq(), rm.GenSeq())
}

func TestAddRemove(t *testing.T) {
	rm := NewRpcMonitor()
	rm.Start()
	defer rm.Stop()

	e := msgenvelope.NewMsgEnvelope(nil)
	reqId := rm.GenSeq()
	e.SetReqId(reqId)
	rm.Add(e)

	assert.NotNil(t, rm.Get(reqId))
	claimed := rm.Remove(reqId)
	require.NotNil(t, claimed)
	// 二次认领落空
	assert.Nil(t, rm.Remove(reqId))
	claimed.Release()
}

func TestTimeoutCompletesFuture(t *testing.T) {
	rm := NewRpcMonitor()
	rm.Start()
	defer rm.Stop()

	fut := future.New()
	e := msgenvelope.NewMsgEnvelope(nil)
	e.SetReqId(rm.GenSeq())
	e.SetTimeout(20 * time.Millisecond)
	e.SetFuture(fut)
	rm.Add(e)

	_, err := fut.ResultWithTimeout(time.Second)
	assert.Equal(t, def.ErrRPCCallTimeout, err)
}

func TestNoTimerWithoutTimeout(t *testing.T) {
	rm := NewRpcMonitor()
	rm.Start()
	defer rm.Stop()

	fut := future.New()
	e := msgenvelope.NewMsgEnvelope(nil)
	e.SetReqId(rm.GenSeq())
	e.SetFuture(fut)
	rm.Add(e)

	// 没有超时的调用保持在途
	time.Sleep(50 * time.Millisecond)
	assert.False(t, fut.IsCompleted())
}

func TestStopFailsPending(t *testing.T) {
	rm := NewRpcMonitor()
	rm.Start()

	fut := future.New()
	e := msgenvelope.NewMsgEnvelope(nil)
	e.SetReqId(rm.GenSeq())
	e.SetFuture(fut)
	rm.Add(e)

	rm.Stop()
	_, err := fut.ResultWithTimeout(time.Second)
	assert.Equal(t, def.ErrServiceStopped, err)
}

func TestCancel(t *testing.T) {
	rm := NewRpcMonitor()
	rm.Start()
	defer rm.Stop()

	fut := future.New()
	e := msgenvelope.NewMsgEnvelope(nil)
	reqId := rm.GenSeq()
	e.SetReqId(reqId)
	e.SetFuture(fut)
	rm.Add(e)

	rm.NewCancel(reqId)()
	_, err := fut.ResultWithTimeout(time.Second)
	assert.Equal(t, def.ErrRPCCallCanceled, err)
}
