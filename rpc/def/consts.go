// Package def
// @Title  常量定义
// @Description  运行时各处共享的常量
// @Author  yr  2025/3/12
// @Update  yr  2025/6/20
package def

import "time"

const (
	DefaultRpcTimeout     = time.Second      // 默认rpc调用超时
	DefaultStopTimeout    = 10 * time.Second // 默认停止超时
	DefaultMailboxSize    = 1024             // 默认邮箱队列容量
	DefaultAntsPoolSize   = 100              // 默认协程池大小
	DefaultConnectTimeout = 3 * time.Second  // 默认远程连接超时
	DefaultDedupTTL       = time.Minute      // 默认重复消息缓存时间
)

// 端点生命周期状态
const (
	EndpointStatusCreated int32 = iota // 已创建,未启动
	EndpointStatusStarting
	EndpointStatusStarted
	EndpointStatusStopping
	EndpointStatusTerminated
)

// 邮箱事件优先级
const (
	PrioritySys  int32 = iota // 控制事件
	PriorityUser              // 业务事件
)

// 邮箱事件类型
const (
	SysEventStart int32 = iota + 1
	SysEventTerminate
	SysEventFinalize
	SysEventTask
	SysEventTimer
	SysEventRpc
	SysEventResponse
)

const (
	RpcTypeLocal = "local"
	RpcTypeRpcx  = "rpcx"
	RpcTypeGrpc  = "grpc"
	RpcTypeNats  = "nats"
)

// 本地地址scheme, 通过目录解析
const SchemeLocal = "ember"

// 方法前缀
const (
	MethodPrefixRpc  = "Rpc" // 可远程调用
	MethodPrefixRpc2 = "RPC"
	MethodPrefixApi  = "Api" // 仅本地调用
	MethodPrefixApi2 = "API"
)

const (
	WildcardName = "*" // 名称通配
)

// nats主题, 应答按节点uid投递,请求按端点名投递
const (
	NatsNodeTopic     = "rpc.node.%s"
	NatsEndpointTopic = "rpc.endpoint.%s"
)

const (
	DefaultDiscoveryUse  = "etcd"
	DefaultDiscoveryPath = "/ember/rpc/services"
	DefaultLogPath       = "logs"
	DefaultPVPath        = "./run"
)
