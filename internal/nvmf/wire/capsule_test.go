package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liujun01203/spdk/internal/nvmf/types"
)

func TestType(t *testing.T) {
	kind, body, err := Type([]byte{byte(CapsuleConnect), 0xAA})
	require.NoError(t, err)
	assert.Equal(t, CapsuleConnect, kind)
	assert.Equal(t, []byte{0xAA}, body)
}

func TestType_Empty(t *testing.T) {
	_, _, err := Type(nil)
	assert.Error(t, err)
}

func TestConnectRoundTrip(t *testing.T) {
	data := make([]byte, connectDataLen)
	data[connectDataOffCntlID+1] = 0xFF // cntlid = 0x00FF
	copy(data[connectDataOffSubNQN:], "nqn.test.subsystem")
	copy(data[connectDataOffHostNQN:], "nqn.test.host")

	cmd := make([]byte, connectCmdLen)
	cmd[3] = 1 // qid = 1

	body := append(append([]byte{}, cmd...), data...)

	req, err := DecodeConnect(body)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), req.QID)
	assert.Equal(t, uint16(0x00FF), req.CntlID)
	assert.Equal(t, "nqn.test.subsystem", req.SubNQN)
	assert.Equal(t, "nqn.test.host", req.HostNQN)
}

func TestDecodeConnect_WrongLength(t *testing.T) {
	_, err := DecodeConnect([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestEncodeConnectResponse_Success(t *testing.T) {
	resp := EncodeConnectResponse(nil, 0)
	assert.Len(t, resp, connectRespLen)
	assert.Equal(t, byte(CapsuleConnect), resp[0])
	assert.Equal(t, byte(0), resp[1]) // sct
}

func TestEncodeConnectResponse_Error(t *testing.T) {
	ferr := types.ErrControllerBusy("busy")
	resp := EncodeConnectResponse(ferr, 0)
	assert.Equal(t, types.StatusCodeTypeCommandSpecific, resp[1])
}

func TestPropertyGetRoundTrip(t *testing.T) {
	req, err := DecodePropertyGet([]byte{0, 0, 0, 0x14, 4})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x14), req.Offset)
	assert.Equal(t, uint8(4), req.Size)

	resp := EncodePropertyGetResponse(nil, 0xDEADBEEF)
	assert.Len(t, resp, propGetRespLen)
}

func TestPropertySetRoundTrip(t *testing.T) {
	req, err := DecodePropertySet([]byte{0, 0, 0, 0x14, 4, 0, 0, 0, 0, 0, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x14), req.Offset)
	assert.Equal(t, uint64(1), req.Value)

	resp := EncodePropertySetResponse(nil)
	assert.Len(t, resp, propSetRespLen)
}
