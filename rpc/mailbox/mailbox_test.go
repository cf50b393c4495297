package mailbox

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/event"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
)

type recordingInvoker struct {
	mu    sync.Mutex
	seen  []int32
	fired chan struct{}
}

func newRecordingInvoker(expect int) *recordingInvoker {
	return &recordingInvoker{fired: make(chan struct{}, expect)}
}

func (r *recordingInvoker) InvokeMessage(e inf.IEvent) {
	r.mu.Lock()
	r.seen = append(r.seen, e.GetType())
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recordingInvoker) EscalateFailure(reason interface{}, e inf.IEvent) {}

func (r *recordingInvoker) types() []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int32, len(r.seen))
	copy(out, r.seen)
	return out
}

func waitN(t *testing.T, r *recordingInvoker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.fired:
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d events invoked", i, n)
		}
	}
}

func TestPostOrderFIFO(t *testing.T) {
	inv := newRecordingInvoker(64)
	mb := NewDefaultMailbox(inv)
	mb.Start()
	defer mb.Stop()

	for i := int32(1); i <= 32; i++ {
		require.NoError(t, mb.PostMessage(event.NewUserEvent(i, nil)))
	}
	waitN(t, inv, 32)

	seen := inv.types()
	for i := int32(1); i <= 32; i++ {
		assert.Equal(t, i, seen[i-1])
	}
}

func TestSuspendRejectsUserEvents(t *testing.T) {
	inv := newRecordingInvoker(8)
	mb := NewDefaultMailbox(inv)
	mb.Start()
	defer mb.Stop()

	assert.True(t, mb.Suspend())

	err := mb.PostMessage(event.NewUserEvent(def.SysEventRpc, nil))
	assert.Equal(t, def.ErrMailboxSuspended, err)

	// 控制事件不受挂起影响
	require.NoError(t, mb.PostMessage(event.NewSysEvent(def.SysEventTerminate, nil)))
	waitN(t, inv, 1)

	assert.True(t, mb.Resume())
	require.NoError(t, mb.PostMessage(event.NewUserEvent(def.SysEventRpc, nil)))
	waitN(t, inv, 1)
}

func TestCloseRejectsEverything(t *testing.T) {
	inv := newRecordingInvoker(1)
	mb := NewDefaultMailbox(inv)
	mb.Start()
	mb.Close()

	err := mb.PostMessage(event.NewSysEvent(def.SysEventStart, nil))
	assert.Equal(t, def.ErrMailboxClosed, err)
	mb.Stop()
}

func TestQueuedEventsDrainAfterClose(t *testing.T) {
	inv := newRecordingInvoker(16)
	mb := NewDefaultMailbox(inv)
	mb.Start()

	for i := 0; i < 10; i++ {
		require.NoError(t, mb.PostMessage(event.NewUserEvent(def.SysEventRpc, nil)))
	}
	mb.Stop()

	assert.Len(t, inv.types(), 10)
}
