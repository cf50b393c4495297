// Package interfaces
// @Title  数据对象接口
// @Description  desc
// @Author  yr  2025/3/12
// @Update  yr  2025/3/12
package interfaces

type IReset interface {
	Reset()
}

type IDataDef interface {
	IsRef() bool
	Ref()
	UnRef()
}
