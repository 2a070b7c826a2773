package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw, err := Encode(TypeChat, ChatPayload{Message: `{"type":"rect"}`, RoomID: "r1"})
	require.NoError(t, err)

	env, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeChat, env.Type)

	var payload ChatPayload
	require.NoError(t, DecodePayload(env, &payload))
	assert.Equal(t, "r1", payload.RoomID)
	assert.Equal(t, `{"type":"rect"}`, payload.Message)
}

func TestDecodeRejectsMissingType(t *testing.T) {
	_, err := Decode([]byte(`{"payload":{}}`))
	assert.Error(t, err)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestDecodePayloadRequiresPayload(t *testing.T) {
	env, err := Decode([]byte(`{"type":"join"}`))
	require.NoError(t, err)

	var payload JoinPayload
	assert.Error(t, DecodePayload(env, &payload))
}

func TestErrorFrame(t *testing.T) {
	env, err := Decode(EncodeError("room does not exist"))
	require.NoError(t, err)
	assert.Equal(t, TypeError, env.Type)
	assert.Equal(t, "room does not exist", env.Text)
	assert.Empty(t, env.Payload)
}
