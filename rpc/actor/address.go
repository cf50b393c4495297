// Package actor
// @Title  端点地址
// @Description  scheme://name@host:port 形式的端点定位串
// @Author  yr  2025/3/13
// @Update  yr  2025/6/20
package actor

import (
	"net/url"

	"github.com/njtc406/emberrpc/rpc/def"
)

// Address 解析后的端点地址
type Address struct {
	Scheme string // ember(目录解析) / rpcx / nats / grpc
	Name   string // 端点名,可带'*'后缀通配
	Host   string // host:port, 本地scheme时为空
}

func (a *Address) IsLocal() bool {
	return a.Scheme == def.SchemeLocal
}

// ParseAddress 解析端点定位串
// 本地: ember://name  远程: rpcx://name@host:port
func ParseAddress(rawAddr string) (*Address, error) {
	u, err := url.Parse(rawAddr)
	if err != nil {
		return nil, def.ErrInvalidAddress
	}

	addr := &Address{Scheme: u.Scheme}
	switch u.Scheme {
	case def.SchemeLocal:
		// ember://name 中name落在Host位置
		if u.User != nil {
			return nil, def.ErrInvalidAddress
		}
		addr.Name = u.Host
	case def.RpcTypeRpcx, def.RpcTypeNats, def.RpcTypeGrpc:
		if u.User == nil || u.Host == "" {
			return nil, def.ErrInvalidAddress
		}
		addr.Name = u.User.Username()
		addr.Host = u.Host
	default:
		return nil, def.ErrInvalidAddress
	}

	if addr.Name == "" {
		return nil, def.ErrInvalidAddress
	}
	return addr, nil
}

// ToPID 由远程地址构造pid, nodeUid未知时留空,由接收方按名称路由
func (a *Address) ToPID() *PID {
	return &PID{
		Address: a.Host,
		Name:    a.Name,
		RpcType: a.Scheme,
	}
}
