// Package interfaces
// @Title  邮箱事件接口
// @Description  desc
// @Author  yr  2025/3/12
// @Update  yr  2025/3/12
package interfaces

type IEvent interface {
	GetType() int32
	GetPriority() int32
	Release()
}
