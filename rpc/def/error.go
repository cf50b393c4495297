package def

import (
	"errors"
)

// 定义系统错误

var (
	ErrEndpointNotStarted    = errors.New("endpoint not started")          // 端点未启动
	ErrEndpointHadStarted    = errors.New("endpoint had started")          // 端点已经启动过
	ErrEndpointTerminated    = errors.New("endpoint terminated")           // 端点已终止
	ErrRecipientUnreachable  = errors.New("recipient unreachable")         // 接收方不可达
	ErrRpcConnectionFailed   = errors.New("rpc connection failed")         // 建立rpc连接失败
	ErrRPCCallTimeout        = errors.New("rpc call timeout")              // RPC 调用超时
	ErrRPCCallFailed         = errors.New("rpc call failed")               // RPC 调用失败
	ErrRPCCallCanceled       = errors.New("rpc call canceled")             // RPC 调用被取消
	ErrMethodNotFound        = errors.New("method not found")              // 方法未找到
	ErrMethodLocalOnly       = errors.New("method is local only")          // 方法仅允许本地调用
	ErrMsgSerializeFailed    = errors.New("message serialize failed")      // 消息序列化失败
	ErrMsgDeserializeFailed  = errors.New("message deserialize failed")    // 消息反序列化失败
	ErrMailboxClosed         = errors.New("mailbox closed")                // 邮箱已关闭
	ErrMailboxSuspended      = errors.New("mailbox suspended")             // 邮箱已挂起
	ErrHandleMessagePanic    = errors.New("handle message panic")          // 处理消息时发生 panic
	ErrInvalidAddress        = errors.New("invalid endpoint address")      // 地址格式非法
	ErrServiceNotFound       = errors.New("service not found")             // 服务未找到
	ErrServiceStopped        = errors.New("service stopped")               // 服务已停止
	ErrNameDuplicated        = errors.New("endpoint name duplicated")      // 端点名重复
	ErrNameAmbiguous         = errors.New("endpoint name ambiguous")       // 通配名称命中多个端点
	ErrParamNotMatch         = errors.New("param not match")               // 参数不匹配
	ErrInputParamNotPtr      = errors.New("input param must be ptr")       // 输入参数必须是指针
	ErrOutputParamNotMatch   = errors.New("output param not match")        // 输出参数不匹配
	ErrEnvelopeNotFound      = errors.New("envelope not found")            // 找不到 envelope
	ErrCallbacksIsEmpty      = errors.New("callbacks is empty")            // 回调函数为空
	ErrFutureHadCompleted    = errors.New("future had completed")          // future 已完成
	ErrDiscoveryConfNotFound = errors.New("discovery conf not found")      // 配置中心未找到
	ErrETCDNotInit           = errors.New("etcd not init")                 // etcd 未初始化
	ErrCodecNotFound         = errors.New("codec not found")               // 编解码器未注册
	ErrTypeNotRegistered     = errors.New("message type not registered")   // 消息类型未注册
	ErrDuplicatedRequest     = errors.New("duplicated request")            // 重复的请求
	ErrSenderClosed          = errors.New("sender closed")                 // 发送器已关闭
	ErrScheduleAfterStopped  = errors.New("schedule after endpoint stops") // 端点停止后不再接受调度
)
