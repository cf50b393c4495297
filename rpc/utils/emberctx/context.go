// Package emberctx
// @Title  上下文header
// @Description  随调用链透传的header,跨节点时写入线上消息
// @Author  yr  2025/3/13
// @Update  yr  2025/3/13
package emberctx

import (
	"context"

	"github.com/google/uuid"
)

const DefaultTraceIdKey = "trace_id"

type contextKey struct{}

var emberHeaderKey = &contextKey{}

// WithHeader 设置整个 header map(覆盖旧值)
func WithHeader(ctx context.Context, headers map[string]string) context.Context {
	return context.WithValue(ctx, emberHeaderKey, headers)
}

// GetHeader 获取 header map(返回副本,防止外部修改)
func GetHeader(ctx context.Context) map[string]string {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(emberHeaderKey).(map[string]string); ok {
		copied := make(map[string]string, len(v))
		for k, val := range v {
			copied[k] = val
		}
		return copied
	}
	return nil
}

// AddHeader 添加单个 header
func AddHeader(ctx context.Context, key, value string) context.Context {
	headers := GetHeader(ctx)
	if headers == nil {
		headers = make(map[string]string)
	}
	headers[key] = value
	return WithHeader(ctx, headers)
}

// AddHeaders 合并多个 header
func AddHeaders(ctx context.Context, newHeaders map[string]string) context.Context {
	if len(newHeaders) == 0 {
		return ctx
	}
	headers := GetHeader(ctx)
	if headers == nil {
		headers = make(map[string]string)
	}
	for k, v := range newHeaders {
		headers[k] = v
	}
	return WithHeader(ctx, headers)
}

func GetHeaderValue(ctx context.Context, key string) string {
	headers := GetHeader(ctx)
	if headers == nil {
		return ""
	}
	return headers[key]
}

// NewCtx 新建带trace_id的上下文
func NewCtx() context.Context {
	return AddHeaders(context.Background(), map[string]string{
		DefaultTraceIdKey: uuid.NewString(),
	})
}
