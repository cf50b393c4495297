// Package core
// @Title  方法分发
// @Description  注册时反射一次,编译出调用闭包,运行期按方法名查表
// @Author  yr  2025/3/16
// @Update  yr  2025/6/20
package core

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/njtc406/emberrpc/rpc/def"
	"github.com/njtc406/emberrpc/rpc/future"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
	"github.com/njtc406/emberrpc/rpc/utils/log"
)

var (
	apiPreFix = []string{def.MethodPrefixApi, def.MethodPrefixApi2}
	rpcPreFix = []string{def.MethodPrefixRpc, def.MethodPrefixRpc2}
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

type MethodCallFunc func(req interface{}) (interface{}, error)

// MethodMgr 管理端点注册的全部方法
type MethodMgr struct {
	mu        sync.RWMutex
	rpcCnt    int // 可远程调用的方法数量
	methodMap map[string]MethodCallFunc
}

func NewMethodMgr() *MethodMgr {
	return &MethodMgr{
		methodMap: make(map[string]MethodCallFunc),
	}
}

// IsPrivate 没有任何Rpc方法的端点不对远程暴露
func (m *MethodMgr) IsPrivate() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rpcCnt == 0
}

func (m *MethodMgr) AddMethodFunc(name string, fn MethodCallFunc) {
	if name == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if hasPrefix(name, rpcPreFix) {
		m.rpcCnt++
	}
	m.methodMap[name] = fn
}

func (m *MethodMgr) GetMethodFunc(name string) (MethodCallFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.methodMap[name]
	return fn, ok
}

// IsLocalOnly Api前缀的方法只接受本地调用
func IsLocalOnly(name string) bool {
	return hasPrefix(name, apiPreFix)
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func hasPrefix(str string, ls []string) bool {
	for _, s := range ls {
		if strings.HasPrefix(str, s) {
			return true
		}
	}
	return false
}

func isExportedOrBuiltinType(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	// 内置类型的PkgPath为空
	return isExported(t.Name()) || t.PkgPath() == ""
}

// registerMethods 扫描handler上的Api/Rpc方法并编译进方法表
func registerMethods(mgr *MethodMgr, handler interface{}, endpointName string) error {
	typ := reflect.TypeOf(handler)
	val := reflect.ValueOf(handler)
	for i := 0; i < typ.NumMethod(); i++ {
		method := typ.Method(i)
		if !hasPrefix(method.Name, apiPreFix) && !hasPrefix(method.Name, rpcPreFix) {
			continue
		}
		if err := compileMethod(mgr, val, method); err != nil {
			return fmt.Errorf("endpoint[%s] method[%s]: %w", endpointName, method.Name, err)
		}
		log.SysLogger.Debugf("endpoint[%s] method[%s] register success", endpointName, method.Name)
	}
	return nil
}

func compileMethod(mgr *MethodMgr, owner reflect.Value, method reflect.Method) error {
	for i := 0; i < method.Type.NumIn(); i++ {
		if !isExportedOrBuiltinType(method.Type.In(i)) {
			return def.ErrParamNotMatch
		}
	}

	var outs []reflect.Type
	var dataOut int
	for i := 0; i < method.Type.NumOut(); i++ {
		t := method.Type.Out(i)
		outs = append(outs, t)
		if !t.Implements(errorType) {
			dataOut++
		}
	}

	mgr.AddMethodFunc(method.Name, compileCallFunc(owner, method.Name, method.Func, method.Type, outs, dataOut > 1))
	return nil
}

// compileCallFunc 预编译调用闭包,运行期不再走反射注册全流程
func compileCallFunc(owner reflect.Value, name string, methodFunc reflect.Value, mType reflect.Type, outs []reflect.Type, multiOut bool) MethodCallFunc {
	paramCount := mType.NumIn()
	isVariadic := mType.IsVariadic()

	return func(req interface{}) (interface{}, error) {
		params := []reflect.Value{owner}

		if req == nil {
			fixed := paramCount - 1
			if isVariadic {
				fixed--
			}
			if fixed > 0 {
				log.SysLogger.Errorf("method[%s] param count not match, need: %d, got: 0", name, fixed)
				return nil, def.ErrParamNotMatch
			}
		} else if reqSlice, ok := req.([]interface{}); ok {
			if isVariadic {
				if len(reqSlice) < paramCount-2 {
					return nil, def.ErrParamNotMatch
				}
			} else if len(reqSlice) != paramCount-1 {
				log.SysLogger.Errorf("method[%s] param count not match, need: %d, got: %d", name, paramCount-1, len(reqSlice))
				return nil, def.ErrParamNotMatch
			}
			for i := 0; i < len(reqSlice); i++ {
				params = append(params, reflect.ValueOf(reqSlice[i]))
			}
		} else {
			if !isVariadic && paramCount != 2 {
				log.SysLogger.Errorf("method[%s] param count not match", name)
				return nil, def.ErrParamNotMatch
			}
			params = append(params, reflect.ValueOf(req))
		}

		results := methodFunc.Call(params)
		if len(results) == 0 {
			return nil, nil
		}

		var output []interface{}
		for i, t := range outs {
			result := results[i]
			if t.Implements(errorType) {
				if !result.IsNil() {
					return nil, result.Interface().(error)
				}
			} else if multiOut {
				output = append(output, result.Interface())
			} else {
				return result.Interface(), nil
			}
		}
		if multiOut {
			return output, nil
		}
		return nil, nil
	}
}

// handleRequest 在端点主线程执行方法调用
func (ep *Endpoint) handleRequest(envelope inf.IEnvelope) {
	deferred := false
	defer func() {
		if r := recover(); r != nil {
			log.SysLogger.Errorf("endpoint[%s] handle message from caller: %s panic: %v\n trace:%s",
				ep.GetName(), envelope.GetSenderPid().String(), r, debug.Stack())
			envelope.SetResponse(nil)
			envelope.SetError(def.ErrHandleMessagePanic)
			deferred = false
		}
		if !deferred {
			ep.doResponse(envelope)
		}
	}()

	call, ok := ep.methodMgr.GetMethodFunc(envelope.GetMethod())
	if !ok {
		envelope.SetError(def.ErrMethodNotFound)
		return
	}
	resp, err := call(envelope.GetRequest())
	if err != nil {
		log.SysLogger.WithContext(envelope.GetContext()).Errorf("endpoint[%s] method[%s] call failed: %v", ep.GetName(), envelope.GetMethod(), err)
		envelope.SetError(err)
		return
	}

	// 返回future的方法不阻塞主线程,future完成时再回应答
	if fut, ok := resp.(*future.Future); ok && fut != nil {
		deferred = true
		fut.OnComplete(func(res interface{}, ferr error) {
			envelope.SetResponse(res)
			envelope.SetError(ferr)
			ep.doResponse(envelope)
		})
		return
	}
	envelope.SetResponse(resp)
}

func (ep *Endpoint) doResponse(envelope inf.IEnvelope) {
	if envelope.NeedResponse() {
		envelope.SetRequest(nil)

		// 应答回到发送方,receiver换成sender
		sender := envelope.GetSenderPid()
		envelope.SetReceiverPid(sender)
		dispatcher := envelope.GetDispatcher()
		if dispatcher == nil {
			log.SysLogger.Errorf("endpoint[%s] response has no return channel, dropped", ep.GetName())
			envelope.Release()
			return
		}
		if err := dispatcher.SendResponse(envelope); err != nil {
			log.SysLogger.WithContext(envelope.GetContext()).Errorf("endpoint[%s] send response failed: %v", ep.GetName(), err)
		}
		return
	}
	// 单向调用出错时上报给未处理错误通道
	if err := envelope.GetError(); err != nil {
		ep.owner.ReportFailure(ep.GetPid(), err)
	}
	envelope.Release()
}

// handleResponse 应答信封不应出现在邮箱里,兜底完成并回收
func (ep *Endpoint) handleResponse(envelope inf.IEnvelope) {
	envelope.Done()
	envelope.Release()
}
