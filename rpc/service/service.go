// Package service
// @Title  rpc服务
// @Description  节点级的端点宿主: 启动/连接/停止端点,收发两侧的通道都从这里拿
// @Author  yr  2025/3/22
// @Update  yr  2025/6/20
package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/client"
	"github.com/njtc406/emberrpc/rpc/config"
	"github.com/njtc406/emberrpc/rpc/core"
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/discovery"
	"github.com/njtc406/emberrpc/rpc/future"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/monitor"
	"github.com/njtc406/emberrpc/rpc/msgbus"
	"github.com/njtc406/emberrpc/rpc/remote"
	"github.com/njtc406/emberrpc/rpc/remote/gr"
	"github.com/njtc406/emberrpc/rpc/remote/nt"
	"github.com/njtc406/emberrpc/rpc/remote/rx"
	"github.com/njtc406/emberrpc/rpc/utils/asynclib"
	"github.com/njtc406/emberrpc/rpc/utils/dedup"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

// FailureReport 单向调用的未处理错误
type FailureReport struct {
	Pid *actor.PID
	Err error
}

type RpcService struct {
	started int32
	stopped int32

	nodeUid string
	nodePid *actor.PID
	conf    *config.ClusterConf

	repo     *repository
	monitor  inf.IMonitor
	senders  *client.SenderManager
	dedup    *dedup.DeDuplicator
	handler  *remote.MessageHandler
	servers  map[string]inf.IRemoteServer // rpcType -> 监听服务

	failMu     sync.RWMutex
	failClosed bool
	failures   chan *FailureReport

	nodeDispatcher inf.IRpcDispatcher
	discovery      *discovery.EtcdDiscovery
}

// NewRpcService 创建节点服务, conf为nil时只提供本地调用
func NewRpcService(conf *config.ClusterConf) *RpcService {
	nodeUid := uuid.NewString()
	s := &RpcService{
		nodeUid:  nodeUid,
		conf:     conf,
		repo:     newRepository(),
		monitor:  monitor.NewRpcMonitor(),
		servers:  make(map[string]inf.IRemoteServer),
		failures: make(chan *FailureReport, 64),
	}
	s.senders = client.NewSenderManager(s.monitor)
	s.dedup = dedup.NewDeDuplicator(def.DefaultDedupTTL, 0)
	s.handler = remote.NewMessageHandler(s, s.monitor, s.dedup)
	s.nodePid = s.buildNodePid()
	s.nodeDispatcher = client.NewLocalDispatcher(s.nodePid, nil, s.senders.GetLocalSender())
	if conf != nil && conf.ETCDConf != nil && len(conf.ETCDConf.Endpoints) > 0 {
		s.discovery = discovery.NewEtcdDiscovery(conf, nodeUid, s)
	}
	return s
}

// buildNodePid 节点pid, 远程应答按它路由回本节点(取第一个监听配置作为通告地址)
func (s *RpcService) buildNodePid() *actor.PID {
	rpcType := def.RpcTypeLocal
	addr := ""
	if s.conf != nil && len(s.conf.RPCServers) > 0 {
		rpcType = s.conf.RPCServers[0].Type
		addr = s.conf.RPCServers[0].Addr
	}
	return actor.NewPID(s.nodeUid, "node", rpcType, addr, 0)
}

// Start 启动监听服务, 没有监听配置时为纯本地节点
func (s *RpcService) Start() error {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return nil
	}
	s.monitor.Start()

	if s.conf == nil {
		return nil
	}
	if s.discovery != nil {
		if err := s.discovery.Start(); err != nil {
			return err
		}
	}
	for _, sc := range s.conf.RPCServers {
		var srv inf.IRemoteServer
		switch sc.Type {
		case def.RpcTypeRpcx:
			srv = rx.NewRpcxServer()
		case def.RpcTypeGrpc:
			srv = gr.NewGrpcServer()
		case def.RpcTypeNats:
			srv = nt.NewNatsServer()
		default:
			log.SysLogger.Errorf("unknown rpc server type: %s", sc.Type)
			continue
		}
		if err := srv.Init(s.handler, sc, s.nodeUid); err != nil {
			return err
		}
		s.servers[sc.Type] = srv
		asynclib.Go(func() {
			if err := srv.Serve(); err != nil {
				log.SysLogger.Errorf("rpc server[%s] serve stopped: %v", sc.Type, err)
			}
		})
	}
	return nil
}

// StartEndpoint 初始化并启动一个端点, src需要内嵌core.Endpoint
func (s *RpcService) StartEndpoint(name string, src inf.IEndpointHandler) (*actor.PID, error) {
	container, ok := src.(core.IEndpointContainer)
	if !ok {
		return nil, def.ErrParamNotMatch
	}
	ep := container.GetEndpoint()

	if err := ep.Init(name, src, s); err != nil {
		return nil, err
	}

	pid := actor.NewPID(s.nodeUid, name, s.nodePid.GetRpcType(), s.nodePid.GetAddress(), time.Now().UnixNano())
	ep.SetPid(pid)

	e := &entry{
		pid:        pid,
		endpoint:   ep,
		dispatcher: client.NewLocalDispatcher(pid, ep, s.senders.GetLocalSender()),
	}
	if err := s.repo.add(e); err != nil {
		return nil, err
	}

	if err := ep.Start(); err != nil {
		s.repo.remove(pid)
		return nil, err
	}

	// 经broker转发的传输按端点名订阅请求主题
	if !ep.IsPrivate() {
		for _, srv := range s.servers {
			if ns, ok := srv.(inf.INameSubscriber); ok {
				if err := ns.WatchName(name); err != nil {
					log.SysLogger.Errorf("watch endpoint name[%s] failed: %v", name, err)
				}
			}
		}
		if s.discovery != nil {
			if err := s.discovery.Register(pid); err != nil {
				log.SysLogger.Errorf("announce endpoint[%s] failed: %v", name, err)
			}
		}
	}
	return pid, nil
}

// AddRemote 发现同步来的远程端点进目录, 名称解析即可命中
func (s *RpcService) AddRemote(pid *actor.PID) {
	sender, err := s.senders.GetRemoteSender(pid.GetAddress(), pid.GetRpcType())
	if err != nil {
		log.SysLogger.Errorf("connect discovered endpoint %s failed: %v", pid.String(), err)
		return
	}
	e := &entry{
		pid:        pid,
		dispatcher: client.NewRemoteDispatcher(pid, sender),
	}
	if err = s.repo.add(e); err != nil {
		log.SysLogger.Warnf("register discovered endpoint %s failed: %v", pid.String(), err)
	}
}

// RemoveRemote 远程端点下线
func (s *RpcService) RemoveRemote(serviceUid string) {
	if e := s.repo.findByUid(serviceUid); e != nil && !e.isLocal() {
		s.repo.remove(e.pid)
	}
}

// Connect 以节点身份连接端点, 地址非法属于前置条件错误,同步返回
func (s *RpcService) Connect(address string) (*future.Future, error) {
	return s.ConnectFrom(nil, address)
}

// ConnectFrom 以某个本地端点的身份连接, 异步回调会回到该端点的工作线程
func (s *RpcService) ConnectFrom(caller *actor.PID, address string) (*future.Future, error) {
	if address == "" {
		return nil, def.ErrInvalidAddress
	}
	addr, err := actor.ParseAddress(address)
	if err != nil {
		return nil, err
	}

	sender := s.nodeDispatcher
	if caller != nil {
		if e := s.repo.findByUid(caller.GetServiceUid()); e != nil && e.isLocal() {
			sender = e.dispatcher
		}
	}

	fut := future.New()
	if addr.IsLocal() {
		e, ferr := s.repo.findByName(addr.Name)
		if ferr != nil {
			fut.Complete(nil, ferr)
			return fut, nil
		}
		fut.Complete(msgbus.NewMessageBus(sender, e.dispatcher, s.monitor, nil), nil)
		return fut, nil
	}

	remoteSender, serr := s.senders.GetRemoteSender(addr.Host, addr.Scheme)
	if serr != nil {
		fut.Complete(nil, def.ErrRpcConnectionFailed)
		return fut, nil
	}
	receiver := client.NewRemoteDispatcher(addr.ToPID(), remoteSender)
	fut.Complete(msgbus.NewMessageBus(sender, receiver, s.monitor, nil), nil)
	return fut, nil
}

// GetDispatcher 按pid选择通道, 本地端点直达邮箱,远程端点按传输类型建连
func (s *RpcService) GetDispatcher(pid *actor.PID) inf.IRpcDispatcher {
	if pid == nil {
		return nil
	}

	if pid.GetNodeUid() == s.nodeUid || pid.GetNodeUid() == "" {
		var e *entry
		if pid.GetNodeUid() != "" {
			e = s.repo.findByUid(pid.GetServiceUid())
		} else {
			// 按名称路由(broker转发的请求不带nodeUid)
			e, _ = s.repo.findByName(pid.GetName())
		}
		if e != nil {
			return e.dispatcher
		}
		if pid.GetNodeUid() == s.nodeUid {
			return nil
		}
	}

	sender, err := s.senders.GetRemoteSender(pid.GetAddress(), pid.GetRpcType())
	if err != nil {
		log.SysLogger.Errorf("get remote sender for %s failed: %v", pid.String(), err)
		return nil
	}
	return client.NewRemoteDispatcher(pid, sender)
}

func (s *RpcService) GetMonitor() inf.IMonitor {
	return s.monitor
}

func (s *RpcService) GetNodePid() *actor.PID {
	return s.nodePid
}

// Deregister 端点终止后从目录摘除, 名字即刻可复用
func (s *RpcService) Deregister(pid *actor.PID) {
	s.repo.remove(pid)
	for _, srv := range s.servers {
		if ns, ok := srv.(inf.INameSubscriber); ok {
			ns.UnwatchName(pid.GetName())
		}
	}
	if s.discovery != nil {
		s.discovery.Unregister(pid)
	}
}

// ReportFailure 单向调用的处理错误从这里冒出, 不会被静默丢弃
func (s *RpcService) ReportFailure(pid *actor.PID, err error) {
	log.SysLogger.Errorf("endpoint[%s] unhandled failure: %v", pid.GetName(), err)
	s.failMu.RLock()
	defer s.failMu.RUnlock()
	if s.failClosed {
		return
	}
	select {
	case s.failures <- &FailureReport{Pid: pid, Err: err}:
	default:
		// 没人消费时只保留日志
	}
}

// Failures 未处理错误通道
func (s *RpcService) Failures() <-chan *FailureReport {
	return s.failures
}

// Stop 停止全部端点与网络资源, 幂等
func (s *RpcService) Stop() {
	if !atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		return
	}

	var futs []*future.Future
	for _, e := range s.repo.locals() {
		futs = append(futs, e.endpoint.CloseAsync())
	}
	for _, fut := range futs {
		if _, err := fut.ResultWithTimeout(def.DefaultStopTimeout); err != nil {
			log.SysLogger.Warnf("wait endpoint termination failed: %v", err)
		}
	}

	if s.discovery != nil {
		s.discovery.Close()
	}
	for tp, srv := range s.servers {
		srv.Close()
		delete(s.servers, tp)
	}
	s.monitor.Stop()
	s.senders.Close()

	s.failMu.Lock()
	s.failClosed = true
	close(s.failures)
	s.failMu.Unlock()
}
