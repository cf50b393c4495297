// Package discovery
// @Title  服务发现
// @Description  基于etcd租约的端点通告与前缀监听,变更喂给目录
// @Author  yr  2025/3/24
// @Update  yr  2025/6/20
package discovery

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"google.golang.org/grpc/connectivity"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/config"
	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

const defaultTTL = 3

// Sink 发现结果的去向, 由RpcService的目录实现
type Sink interface {
	AddRemote(pid *actor.PID)
	RemoveRemote(serviceUid string)
}

type EtcdDiscovery struct {
	conf    *config.ClusterConf
	nodeUid string
	sink    Sink

	client *clientv3.Client
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	leases map[string]clientv3.LeaseID // serviceUid -> lease
}

func NewEtcdDiscovery(conf *config.ClusterConf, nodeUid string, sink Sink) *EtcdDiscovery {
	return &EtcdDiscovery{
		conf:    normalizeConf(conf),
		nodeUid: nodeUid,
		sink:    sink,
		leases:  make(map[string]clientv3.LeaseID),
	}
}

func (e *EtcdDiscovery) Start() error {
	client, err := createEtcdClient(e.conf)
	if err != nil {
		return err
	}
	e.client = client
	e.ctx, e.cancel = context.WithCancel(context.Background())

	go e.watchLoop()
	go e.healthCheck()
	e.syncInitialState()
	return nil
}

func (e *EtcdDiscovery) Close() {
	if e.cancel == nil {
		return
	}
	e.cancel()

	e.mu.Lock()
	for uid, lease := range e.leases {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, _ = e.client.Revoke(ctx, lease)
		cancel()
		delete(e.leases, uid)
	}
	e.mu.Unlock()

	_ = e.client.Close()
	e.client = nil
	e.cancel = nil
}

func (e *EtcdDiscovery) key(serviceUid string) string {
	return path.Join(e.conf.DiscoveryConf.Path, serviceUid)
}

// Register 通告端点, 租约到期未续即视为下线
func (e *EtcdDiscovery) Register(pid *actor.PID) error {
	if e.client == nil {
		return def.ErrETCDNotInit
	}

	data, err := msgpack.Marshal(pid)
	if err != nil {
		return def.ErrMsgSerializeFailed
	}

	lease, err := e.client.Grant(e.ctx, e.conf.DiscoveryConf.TTL)
	if err != nil {
		return err
	}
	if _, err = e.client.Put(e.ctx, e.key(pid.GetServiceUid()), string(data), clientv3.WithLease(lease.ID)); err != nil {
		return err
	}

	ch, err := e.client.KeepAlive(e.ctx, lease.ID)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
		}
	}()

	e.mu.Lock()
	e.leases[pid.GetServiceUid()] = lease.ID
	e.mu.Unlock()
	return nil
}

func (e *EtcdDiscovery) Unregister(pid *actor.PID) {
	if e.client == nil {
		return
	}
	uid := pid.GetServiceUid()

	e.mu.Lock()
	lease, ok := e.leases[uid]
	delete(e.leases, uid)
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _ = e.client.Delete(ctx, e.key(uid))
	if ok {
		_, _ = e.client.Revoke(ctx, lease)
	}
}

func (e *EtcdDiscovery) syncInitialState() {
	resp, err := e.client.Get(e.ctx, e.conf.DiscoveryConf.Path, clientv3.WithPrefix())
	if err != nil {
		log.SysLogger.Errorf("sync services failed: %v", err)
		return
	}
	for _, kv := range resp.Kvs {
		e.applyPut(kv.Value)
	}
}

func (e *EtcdDiscovery) watchLoop() {
	watchChan := e.client.Watch(e.ctx, e.conf.DiscoveryConf.Path, clientv3.WithPrefix())
	for {
		select {
		case <-e.ctx.Done():
			return
		case resp := <-watchChan:
			if err := resp.Err(); err != nil {
				log.SysLogger.Errorf("etcd watch error: %v", err)
				continue
			}
			for _, ev := range resp.Events {
				switch ev.Type {
				case clientv3.EventTypePut:
					e.applyPut(ev.Kv.Value)
				case clientv3.EventTypeDelete:
					e.applyDelete(string(ev.Kv.Key))
				}
			}
		}
	}
}

func (e *EtcdDiscovery) applyPut(value []byte) {
	var pid actor.PID
	if err := msgpack.Unmarshal(value, &pid); err != nil {
		log.SysLogger.Errorf("decode discovered pid failed: %v", err)
		return
	}
	if pid.GetNodeUid() == e.nodeUid {
		// 自己通告的端点走本地目录
		return
	}
	e.sink.AddRemote(&pid)
}

func (e *EtcdDiscovery) applyDelete(key string) {
	uid := path.Base(key)
	e.sink.RemoveRemote(uid)
}

func (e *EtcdDiscovery) healthCheck() {
	ticker := time.NewTicker(time.Second * 10)
	defer ticker.Stop()
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			if !isEtcdClientConnected(e.client) {
				log.SysLogger.Warn("etcd connection not ready")
			}
		}
	}
}

func normalizeConf(conf *config.ClusterConf) *config.ClusterConf {
	if conf.DiscoveryConf == nil {
		conf.DiscoveryConf = &config.EtcdDiscoveryConf{
			Path: def.DefaultDiscoveryPath,
			TTL:  defaultTTL,
		}
	}
	if conf.DiscoveryConf.Path == "" {
		conf.DiscoveryConf.Path = def.DefaultDiscoveryPath
	}
	if conf.DiscoveryConf.TTL == 0 {
		conf.DiscoveryConf.TTL = defaultTTL
	}
	return conf
}

func createEtcdClient(conf *config.ClusterConf) (*clientv3.Client, error) {
	cfg := clientv3.Config{
		Endpoints:   conf.ETCDConf.Endpoints,
		DialTimeout: conf.ETCDConf.DialTimeout,
		Username:    conf.ETCDConf.UserName,
		Password:    conf.ETCDConf.Password,
	}

	var loggerCfg zap.Config
	if config.IsDebug() {
		loggerCfg = zap.NewDevelopmentConfig()
	} else {
		loggerCfg = zap.NewProductionConfig()
	}
	logger, err := loggerCfg.Build()
	if err != nil {
		log.SysLogger.Errorf("create etcd logger failed: %v", err)
		return nil, err
	}
	cfg.Logger = logger

	return clientv3.New(cfg)
}

func isEtcdClientConnected(client *clientv3.Client) bool {
	if client == nil {
		return false
	}
	conn := client.ActiveConnection()
	if conn == nil {
		return false
	}
	state := conn.GetState()
	return state == connectivity.Ready || state == connectivity.Idle
}
