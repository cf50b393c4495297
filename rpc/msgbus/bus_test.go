package msgbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njtc406/emberrpc/rpc/def"
)

type pair struct {
	A int
	B string
}

func TestCheckOutParam(t *testing.T) {
	var n int
	assert.NoError(t, checkOutParam(&n))
	assert.NoError(t, checkOutParam([]interface{}{&n, &pair{}}))

	assert.Equal(t, def.ErrOutputParamNotMatch, checkOutParam(n))
	assert.Equal(t, def.ErrOutputParamNotMatch, checkOutParam([]interface{}{&n, 1}))
}

func TestCheckOutParamRejectsNonPointer(t *testing.T) {
	// 指针以外的引用类型也一律拒绝, copyOne无法通过Elem写回
	assert.Equal(t, def.ErrOutputParamNotMatch, checkOutParam(map[string]int{}))
	assert.Equal(t, def.ErrOutputParamNotMatch, checkOutParam([]int{}))
	assert.Equal(t, def.ErrOutputParamNotMatch, checkOutParam(make(chan int)))
	var n int
	assert.Equal(t, def.ErrOutputParamNotMatch, checkOutParam([]interface{}{&n, map[string]int{}}))
	assert.Equal(t, def.ErrOutputParamNotMatch, checkOutParam([]interface{}{nil}))
}

func TestCopyOutSingle(t *testing.T) {
	var n int
	require.NoError(t, copyOut(42, &n))
	assert.Equal(t, 42, n)

	var p pair
	require.NoError(t, copyOut(&pair{A: 1, B: "x"}, &p))
	assert.Equal(t, pair{A: 1, B: "x"}, p)
}

func TestCopyOutMulti(t *testing.T) {
	var n int
	var s string
	require.NoError(t, copyOut([]interface{}{7, "seven"}, []interface{}{&n, &s}))
	assert.Equal(t, 7, n)
	assert.Equal(t, "seven", s)

	// 数量不一致
	assert.Equal(t, def.ErrOutputParamNotMatch, copyOut([]interface{}{7, "seven"}, []interface{}{&n}))
}

func TestCopyOutTypeMismatch(t *testing.T) {
	var s string
	assert.Equal(t, def.ErrOutputParamNotMatch, copyOut(42, &s))
}

func TestCopyOutNilResponse(t *testing.T) {
	n := 5
	require.NoError(t, copyOut(nil, &n))
	assert.Equal(t, 5, n)
}

func TestIsLocalOnly(t *testing.T) {
	assert.True(t, isLocalOnly("ApiReset"))
	assert.True(t, isLocalOnly("APIReset"))
	assert.False(t, isLocalOnly("RpcAdd"))
}
