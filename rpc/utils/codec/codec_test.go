package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njtc406/emberrpc/rpc/def"
)

type calcReq struct {
	A int    `json:"a"`
	B int    `json:"b"`
	S string `json:"s"`
}

type unregisteredMsg struct {
	V int `json:"v"`
}

func TestJsonRoundTrip(t *testing.T) {
	RegisterType(&calcReq{})

	in := &calcReq{A: 1, B: 2, S: "add"}
	data, typeName, err := Encode(Json, in)
	require.NoError(t, err)
	require.NotEmpty(t, typeName)

	out, err := Decode(Json, typeName, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeUnregisteredType(t *testing.T) {
	data, typeName, err := Encode(Json, &unregisteredMsg{V: 1})
	require.NoError(t, err)

	_, err = Decode(Json, typeName, data)
	assert.Equal(t, def.ErrTypeNotRegistered, err)
}

func TestEncodeNilAndDecodeEmpty(t *testing.T) {
	data, typeName, err := Encode(Json, nil)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Empty(t, typeName)

	out, err := Decode(Json, "", nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestGetCodecUnknown(t *testing.T) {
	_, err := GetCodec(999)
	assert.Equal(t, def.ErrCodecNotFound, err)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, Json, TypeOf(&calcReq{}))
	assert.Equal(t, Json, TypeOf("plain string"))
}
