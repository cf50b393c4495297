// Package actor
// @Title  端点标识
// @Description  desc
// @Author  yr  2025/3/13
// @Update  yr  2025/6/20
package actor

import (
	"fmt"
	"strings"
)

// PID 端点的全局标识
type PID struct {
	Address    string `msgpack:"address"`     // 所在节点的监听地址 host:port (nats传输时为broker地址)
	NodeUid    string `msgpack:"node_uid"`    // 节点唯一id
	Name       string `msgpack:"name"`        // 端点名
	ServiceUid string `msgpack:"service_uid"` // 集群内唯一id
	RpcType    string `msgpack:"rpc_type"`    // 传输类型
	Version    int64  `msgpack:"version"`     // 端点版本号
}

func NewPID(nodeUid, name, rpcType, address string, version int64) *PID {
	return &PID{
		Address:    address,
		NodeUid:    nodeUid,
		Name:       name,
		ServiceUid: CreateServiceUid(nodeUid, name),
		RpcType:    rpcType,
		Version:    version,
	}
}

func CreateServiceUid(nodeUid, name string) string {
	return fmt.Sprintf("%s@%s", name, nodeUid)
}

func (p *PID) GetAddress() string {
	if p == nil {
		return ""
	}
	return p.Address
}

func (p *PID) GetNodeUid() string {
	if p == nil {
		return ""
	}
	return p.NodeUid
}

func (p *PID) GetName() string {
	if p == nil {
		return ""
	}
	return p.Name
}

func (p *PID) GetServiceUid() string {
	if p == nil {
		return ""
	}
	return p.ServiceUid
}

func (p *PID) GetRpcType() string {
	if p == nil {
		return ""
	}
	return p.RpcType
}

func (p *PID) GetVersion() int64 {
	if p == nil {
		return 0
	}
	return p.Version
}

func (p *PID) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s://%s@%s", p.RpcType, p.Name, p.Address)
}

// Equal 同一个端点实例(版本一致)
func (p *PID) Equal(other *PID) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ServiceUid == other.ServiceUid && p.Version == other.Version
}

// MatchName 支持'*'后缀的前缀匹配
func MatchName(pattern, name string) bool {
	if pattern == name {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// IsWildcard 是否为通配名称
func IsWildcard(name string) bool {
	return strings.Contains(name, "*")
}
