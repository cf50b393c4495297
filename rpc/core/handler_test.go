package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njtc406/emberrpc/rpc/def"
)

var errStorageDown = errors.New("storage down")

type MathHandler struct{}

func (h *MathHandler) RpcAdd(a, b int) (int, error) { return a + b, nil }

func (h *MathHandler) RpcFail() error { return errStorageDown }

func (h *MathHandler) RpcSum(nums ...int) (int, error) {
	total := 0
	for _, n := range nums {
		total += n
	}
	return total, nil
}

func (h *MathHandler) RpcPair() (int, string, error) { return 1, "one", nil }

func (h *MathHandler) ApiReset() error { return nil }

// 无前缀,不应注册
func (h *MathHandler) Helper() {}

type AdminHandler struct{}

func (h *AdminHandler) ApiPing() (string, error) { return "pong", nil }

func TestRegisterMethodsByPrefix(t *testing.T) {
	mgr := NewMethodMgr()
	require.NoError(t, registerMethods(mgr, &MathHandler{}, "math"))

	for _, name := range []string{"RpcAdd", "RpcFail", "RpcSum", "RpcPair", "ApiReset"} {
		_, ok := mgr.GetMethodFunc(name)
		assert.True(t, ok, name)
	}
	_, ok := mgr.GetMethodFunc("Helper")
	assert.False(t, ok)
	assert.False(t, mgr.IsPrivate())
}

func TestPrivateWithoutRpcMethods(t *testing.T) {
	mgr := NewMethodMgr()
	require.NoError(t, registerMethods(mgr, &AdminHandler{}, "admin"))
	assert.True(t, mgr.IsPrivate())
}

func TestIsLocalOnly(t *testing.T) {
	assert.True(t, IsLocalOnly("ApiReset"))
	assert.True(t, IsLocalOnly("APIReset"))
	assert.False(t, IsLocalOnly("RpcAdd"))
	assert.False(t, IsLocalOnly("RPCAdd"))
}

func TestCallWithSliceParams(t *testing.T) {
	mgr := NewMethodMgr()
	require.NoError(t, registerMethods(mgr, &MathHandler{}, "math"))

	call, _ := mgr.GetMethodFunc("RpcAdd")
	resp, err := call([]interface{}{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 3, resp)
}

func TestCallParamCountMismatch(t *testing.T) {
	mgr := NewMethodMgr()
	require.NoError(t, registerMethods(mgr, &MathHandler{}, "math"))

	call, _ := mgr.GetMethodFunc("RpcAdd")
	_, err := call([]interface{}{1})
	assert.Equal(t, def.ErrParamNotMatch, err)
	_, err = call(nil)
	assert.Equal(t, def.ErrParamNotMatch, err)
}

func TestCallErrorReturn(t *testing.T) {
	mgr := NewMethodMgr()
	require.NoError(t, registerMethods(mgr, &MathHandler{}, "math"))

	call, _ := mgr.GetMethodFunc("RpcFail")
	_, err := call(nil)
	assert.Equal(t, errStorageDown, err)
}

func TestCallVariadic(t *testing.T) {
	mgr := NewMethodMgr()
	require.NoError(t, registerMethods(mgr, &MathHandler{}, "math"))

	call, _ := mgr.GetMethodFunc("RpcSum")
	resp, err := call([]interface{}{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 6, resp)

	resp, err = call(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, resp)
}

func TestCallMultiOut(t *testing.T) {
	mgr := NewMethodMgr()
	require.NoError(t, registerMethods(mgr, &MathHandler{}, "math"))

	call, _ := mgr.GetMethodFunc("RpcPair")
	resp, err := call(nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, "one"}, resp)
}
