package core

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/client"
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/future"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/monitor"
	"github.com/njtc406/emberrpc/rpc/msgenvelope"
)

type fakeOwner struct {
	monitor      inf.IMonitor
	mu           sync.Mutex
	deregistered []*actor.PID
	failures     []error
}

func newFakeOwner() *fakeOwner {
	mt := monitor.NewRpcMonitor()
	mt.Start()
	return &fakeOwner{monitor: mt}
}

func (o *fakeOwner) GetDispatcher(pid *actor.PID) inf.IRpcDispatcher { return nil }

func (o *fakeOwner) GetMonitor() inf.IMonitor { return o.monitor }

func (o *fakeOwner) GetNodePid() *actor.PID { return nil }

func (o *fakeOwner) Deregister(pid *actor.PID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deregistered = append(o.deregistered, pid)
}

func (o *fakeOwner) ReportFailure(pid *actor.PID, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, err)
}

func (o *fakeOwner) deregisterCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.deregistered)
}

type CounterService struct {
	Endpoint
	startCnt int32
	stopCnt  int32
	startErr error
	stopWait time.Duration
	stopGate *future.Future // 非nil时OnStop交出它,由测试决定何时完成
}

func (s *CounterService) OnStart() error {
	atomic.AddInt32(&s.startCnt, 1)
	return s.startErr
}

func (s *CounterService) OnStop() *future.Future {
	atomic.AddInt32(&s.stopCnt, 1)
	if s.stopGate != nil {
		return s.stopGate
	}
	if s.stopWait <= 0 {
		return nil
	}
	fut := future.New()
	time.AfterFunc(s.stopWait, func() { fut.Complete(nil, nil) })
	return fut
}

func (s *CounterService) RpcIncr(n int) (int, error) {
	return n + 1, nil
}

func (s *CounterService) RpcPanic() error {
	panic("unexpected state")
}

func (s *CounterService) RpcLater(n int) (*future.Future, error) {
	fut := future.New()
	time.AfterFunc(10*time.Millisecond, func() { fut.Complete(n*2, nil) })
	return fut, nil
}

func setupEndpoint(t *testing.T, svc *CounterService) (*Endpoint, *fakeOwner) {
	t.Helper()
	owner := newFakeOwner()
	ep := svc.GetEndpoint()
	require.NoError(t, ep.Init("counter", svc, owner))
	ep.SetPid(actor.NewPID("test-node", "counter", def.RpcTypeLocal, "", time.Now().UnixNano()))
	return ep, owner
}

// callAsync 经本地通道投递一次需要应答的调用, 投递失败同步返回错误
func callAsync(t *testing.T, ep *Endpoint, method string, req interface{}) (*future.Future, error) {
	t.Helper()
	sender := client.NewSenderManager(nil).GetLocalSender()
	dispatcher := client.NewLocalDispatcher(ep.GetPid(), ep, sender)

	fut := future.New()
	e := msgenvelope.NewMsgEnvelope(nil)
	e.SetSenderPid(actor.NewPID("test-node", "caller", def.RpcTypeLocal, "", 1))
	e.SetReceiverPid(ep.GetPid())
	e.SetMethod(method)
	e.SetRequest(req)
	e.SetNeedResponse(true)
	e.SetDispatcher(dispatcher)
	e.SetFuture(fut)

	if err := dispatcher.SendRequest(e); err != nil {
		e.Release()
		return nil, err
	}
	return fut, nil
}

// call 同步调用
func call(t *testing.T, ep *Endpoint, method string, req interface{}) (interface{}, error) {
	t.Helper()
	fut, err := callAsync(t, ep, method, req)
	if err != nil {
		return nil, err
	}
	return fut.ResultWithTimeout(time.Second)
}

func TestCallAfterStart(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())
	defer ep.CloseAsync()

	resp, err := call(t, ep, "RpcIncr", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, resp)
	// 启动信号先于业务消息执行
	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.startCnt))
}

func TestCallBeforeStartRejected(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)

	_, err := call(t, ep, "RpcIncr", 1)
	assert.Equal(t, def.ErrEndpointNotStarted, err)

	// 同一个端点启动后调用即成功
	require.NoError(t, ep.Start())
	defer ep.CloseAsync()
	resp, err := call(t, ep, "RpcIncr", 41)
	require.NoError(t, err)
	assert.Equal(t, 42, resp)
}

func TestStartTwice(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())
	defer ep.CloseAsync()

	assert.Equal(t, def.ErrEndpointHadStarted, ep.Start())
}

func TestMethodNotFound(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())
	defer ep.CloseAsync()

	_, err := call(t, ep, "RpcMissing", nil)
	assert.Equal(t, def.ErrMethodNotFound, err)
}

func TestPanicInHandler(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())
	defer ep.CloseAsync()

	_, err := call(t, ep, "RpcPanic", nil)
	assert.Equal(t, def.ErrHandleMessagePanic, err)

	// 邮箱worker不受panic影响,后续调用正常
	resp, err := call(t, ep, "RpcIncr", 5)
	require.NoError(t, err)
	assert.Equal(t, 6, resp)
}

func TestFutureReturningHandler(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())
	defer ep.CloseAsync()

	resp, err := call(t, ep, "RpcLater", 21)
	require.NoError(t, err)
	assert.Equal(t, 42, resp)
}

func TestCloseAsyncIdempotent(t *testing.T) {
	svc := &CounterService{}
	ep, owner := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())

	futA := ep.CloseAsync()
	futB := ep.CloseAsync()
	assert.Same(t, futA, futB)

	_, err := futA.ResultWithTimeout(time.Second)
	require.NoError(t, err)
	assert.True(t, ep.IsTerminated())
	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.stopCnt))
	assert.Equal(t, 1, owner.deregisterCount())
}

func TestCloseConcurrent(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fut := ep.CloseAsync()
			_, _ = fut.ResultWithTimeout(time.Second)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.stopCnt))
}

func TestCloseWithoutStart(t *testing.T) {
	svc := &CounterService{}
	ep, owner := setupEndpoint(t, svc)

	fut := ep.CloseAsync()
	_, err := fut.ResultWithTimeout(time.Second)
	require.NoError(t, err)
	assert.True(t, ep.IsTerminated())
	// 未启动过的端点不执行任何钩子
	assert.Equal(t, int32(0), atomic.LoadInt32(&svc.startCnt))
	assert.Equal(t, int32(0), atomic.LoadInt32(&svc.stopCnt))
	assert.Equal(t, 1, owner.deregisterCount())
}

func TestStoppingDrainsQueuedThenRejects(t *testing.T) {
	svc := &CounterService{stopGate: future.New()}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())

	// 卡住worker,让后续入队顺序完全可控
	block := make(chan struct{})
	parked := make(chan struct{})
	require.NoError(t, ep.GetMainThreadExecutor().Execute(func() {
		close(parked)
		<-block
	}))
	<-parked

	// 挂起发生在worker处理终止信号时,此前投递的调用仍会入队
	termFut := ep.CloseAsync()
	queued, err := callAsync(t, ep, "RpcIncr", 1)
	require.NoError(t, err)
	close(block)

	// 排在终止信号之后的消息在停止期间执行完,不被丢弃
	resp, err := queued.ResultWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, resp)
	assert.False(t, termFut.IsCompleted())

	// 挂起之后的新调用直接拒绝
	_, err = call(t, ep, "RpcIncr", 1)
	assert.Equal(t, def.ErrRecipientUnreachable, err)

	svc.stopGate.Complete(nil, nil)
	_, err = termFut.ResultWithTimeout(time.Second)
	require.NoError(t, err)
	assert.True(t, ep.IsTerminated())
}

func TestOnStopFutureDelaysTermination(t *testing.T) {
	svc := &CounterService{stopWait: 60 * time.Millisecond}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())

	start := time.Now()
	fut := ep.CloseAsync()
	_, err := fut.ResultWithTimeout(time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestOnStartFailure(t *testing.T) {
	svc := &CounterService{startErr: errStorageDown}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())

	_, err := ep.GetTerminationFuture().ResultWithTimeout(time.Second)
	require.Error(t, err)
	assert.ErrorContains(t, err, errStorageDown.Error())

	// 启动失败后拒绝一切业务消息
	_, err = call(t, ep, "RpcIncr", 1)
	assert.Equal(t, def.ErrEndpointNotStarted, err)
}

func TestScheduleOnMainThread(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())
	defer ep.CloseAsync()

	done := make(chan time.Time, 1)
	start := time.Now()
	_, err := ep.GetMainThreadExecutor().Schedule(20*time.Millisecond, func() {
		done <- time.Now()
	})
	require.NoError(t, err)

	select {
	case fired := <-done:
		assert.GreaterOrEqual(t, fired.Sub(start), 20*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("scheduled task never ran")
	}
}

func TestScheduleBeforeStart(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)

	_, err := ep.GetMainThreadExecutor().Schedule(time.Millisecond, func() {})
	assert.Equal(t, def.ErrEndpointNotStarted, err)
}

func TestExecuteMutualExclusion(t *testing.T) {
	svc := &CounterService{}
	ep, _ := setupEndpoint(t, svc)
	require.NoError(t, ep.Start())
	defer ep.CloseAsync()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		err := ep.GetMainThreadExecutor().Execute(func() {
			counter++ // 主线程串行执行,无需加锁
			wg.Done()
		})
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, 64, counter)
}
