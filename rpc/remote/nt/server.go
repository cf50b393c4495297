// Package nt
// @Title  nats监听服务
// @Description  订阅节点应答主题,公开端点上线时追加端点名请求主题
// @Author  yr  2025/4/15
// @Update  yr  2025/6/20
package nt

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/njtc406/emberrpc/rpc/config"
	"github.com/njtc406/emberrpc/rpc/def"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

type natsServer struct {
	listener *NatsListener
	conf     *config.RPCServer
	nodeUid  string

	conn    *nats.Conn
	mu      sync.Mutex
	nodeSub *nats.Subscription
	subs    map[string]*nats.Subscription // 端点名 -> 请求主题订阅
}

func NewNatsServer() inf.IRemoteServer {
	return &natsServer{
		subs: make(map[string]*nats.Subscription),
	}
}

func (s *natsServer) Init(handler inf.IRemoteHandler, conf *config.RPCServer, nodeUid string) error {
	s.listener = &NatsListener{handler: handler}
	s.conf = conf
	s.nodeUid = nodeUid
	return nil
}

func (s *natsServer) Serve() error {
	log.SysLogger.Infof("nats server listening at: %s", s.conf.Addr)

	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.PingInterval(30 * time.Second),
		nats.MaxPingsOutstanding(3),
		nats.Timeout(def.DefaultConnectTimeout),
	}

	if s.conf.CAs != "" {
		opts = append(opts, nats.RootCAs(s.conf.CAs))
	}
	if s.conf.Cert != "" && s.conf.CertKey != "" {
		opts = append(opts, nats.ClientCert(s.conf.Cert, s.conf.CertKey))
	}

	conn, err := nats.Connect(s.conf.Addr, opts...)
	if err != nil {
		log.SysLogger.Errorf("nats server connect error: %v", err)
		return def.ErrRpcConnectionFailed
	}
	s.conn = conn

	sub, err := conn.Subscribe(fmt.Sprintf(def.NatsNodeTopic, s.nodeUid), s.listener.Handle)
	if err != nil {
		log.SysLogger.Errorf("nats server subscribe error: %v", err)
		conn.Close()
		s.conn = nil
		return err
	}
	s.nodeSub = sub
	return nil
}

// WatchName 订阅端点名请求主题, 端点启动后才可被远程按名字调用
func (s *natsServer) WatchName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return def.ErrSenderClosed
	}
	if _, ok := s.subs[name]; ok {
		return nil
	}
	sub, err := s.conn.Subscribe(fmt.Sprintf(def.NatsEndpointTopic, name), s.listener.Handle)
	if err != nil {
		return err
	}
	s.subs[name] = sub
	return nil
}

func (s *natsServer) UnwatchName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subs[name]; ok {
		_ = sub.Unsubscribe()
		delete(s.subs, name)
	}
}

func (s *natsServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	if s.nodeSub != nil {
		_ = s.nodeSub.Unsubscribe()
		s.nodeSub = nil
	}
	for name, sub := range s.subs {
		_ = sub.Unsubscribe()
		delete(s.subs, name)
	}
	s.conn.Close()
	s.conn = nil
}
