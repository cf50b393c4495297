// Package config
// @Title  节点配置定义
// @Description  desc
// @Author  yr  2025/3/20
// @Update  yr  2025/6/20
package config

import (
	"time"

	"github.com/njtc406/emberrpc/rpc/utils/log"
)

const (
	Debug   = `debug`
	Release = `release`
)

type conf struct {
	NodeConf     *NodeConf       `binding:"required"` // 节点基础配置
	SystemLogger *log.LoggerConf `binding:"required"` // 系统日志
	ClusterConf  *ClusterConf    `binding:"required"` // 集群配置
}

type NodeConf struct {
	NodeId       string        `binding:""`         // 节点ID(为空时启动自动生成)
	SystemStatus string        `binding:"required"` // 系统状态(debug/release)
	PVPath       string        `binding:"required"` // 缓存目录(默认./run)
	AntsPoolSize int           `binding:"required"` // 线程池大小
	DedupTTL     time.Duration `binding:""`         // 重复请求识别窗口(默认1分钟)
}

type ClusterConf struct {
	ETCDConf      *ETCDConf          `binding:""` // etcd配置
	RPCServers    []*RPCServer       `binding:""` // rpc服务配置
	DiscoveryConf *EtcdDiscoveryConf `binding:""` // 服务发现配置
}

type ETCDConf struct {
	Endpoints   []string
	DialTimeout time.Duration // 默认3秒
	UserName    string
	Password    string
}

type RPCServer struct {
	Addr    string // rpc监听地址
	Protoc  string // 协议
	Type    string // 服务类型(rpcx/grpc/nats)
	Cert    string `binding:""` // 证书
	CertKey string `binding:""` // 证书密钥
	CAs     string `binding:""` // ca证书
}

// IsDebug 节点是否运行在debug状态
func IsDebug() bool {
	return Conf.NodeConf == nil || Conf.NodeConf.SystemStatus != Release
}

type EtcdDiscoveryConf struct {
	Path string // rpc注册路径
	TTL  int64  // 租约有效期(默认3秒)
}
