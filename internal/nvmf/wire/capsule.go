// Package wire implements the capsule encoding this target's reference
// TCP transport (internal/nvmf/transport/tcp) carries: a fixed-layout
// binary framing for the Fabrics Connect, Property Get, and Property Set
// commands/responses.
//
// The base NVMe-oF TCP PDU format (ICReq/ICResp, PDU headers, digests) is
// out of scope here -- spec.md's Non-goals exclude transport data-plane
// internals -- so this package only needs to carry the fields the session
// core (internal/nvmf/connect, internal/nvmf/property) actually reads,
// length-prefixed by the tcp transport above it.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/liujun01203/spdk/internal/nvmf/types"
)

// CapsuleType discriminates the capsule bodies this wire format carries.
type CapsuleType uint8

const (
	CapsuleConnect     CapsuleType = 1
	CapsulePropertyGet CapsuleType = 2
	CapsulePropertySet CapsuleType = 3
)

// Fixed field widths. nqnFieldLen is generous over the base
// spec's 223-byte NQN limit plus NUL terminator, rounded for alignment.
const (
	nqnFieldLen = 256

	connectCmdLen  = 6
	connectDataLen = 2 + 54 + 16 + nqnFieldLen + nqnFieldLen // cntlid + reserved + hostid + subnqn + hostnqn
	connectReqLen  = 1 + connectCmdLen + connectDataLen
	connectRespLen = 1 + 1 + 2 + 1 + 2 + 2 // type + sct + sc + iattr + ipo + cntlid

	propGetReqLen  = 1 + 4 + 1
	propGetRespLen = 1 + 1 + 2 + 1 + 2 + 8

	propSetReqLen  = 1 + 4 + 1 + 8
	propSetRespLen = 1 + 1 + 2 + 1 + 2
)

const (
	connectDataOffCntlID = 0
	connectDataOffHostID = 56
	connectDataOffSubNQN = 72
	connectDataOffHostNQN = connectDataOffSubNQN + nqnFieldLen
)

// ConnectRequest is the decoded Connect capsule: command fields plus the
// data payload fields, matching internal/nvmf/connect.Command/Data.
type ConnectRequest struct {
	RecFmt  uint16
	QID     uint16
	SQSize  uint16
	CntlID  uint16
	HostID  [16]byte
	SubNQN  string
	HostNQN string
}

// DecodeConnect parses a Connect capsule body (type byte already
// stripped by Type/Dispatch).
func DecodeConnect(body []byte) (ConnectRequest, error) {
	if len(body) != connectCmdLen+connectDataLen {
		return ConnectRequest{}, fmt.Errorf("wire: connect capsule: want %d bytes, got %d",
			connectCmdLen+connectDataLen, len(body))
	}

	cmd := body[:connectCmdLen]
	data := body[connectCmdLen:]

	req := ConnectRequest{
		RecFmt: binary.BigEndian.Uint16(cmd[0:2]),
		QID:    binary.BigEndian.Uint16(cmd[2:4]),
		SQSize: binary.BigEndian.Uint16(cmd[4:6]),
		CntlID: binary.BigEndian.Uint16(data[connectDataOffCntlID : connectDataOffCntlID+2]),
	}
	copy(req.HostID[:], data[connectDataOffHostID:connectDataOffHostID+16])
	req.SubNQN = decodeNQN(data[connectDataOffSubNQN : connectDataOffSubNQN+nqnFieldLen])
	req.HostNQN = decodeNQN(data[connectDataOffHostNQN : connectDataOffHostNQN+nqnFieldLen])

	return req, nil
}

// EncodeConnectResponse builds the wire bytes for a successful or failed
// Connect response. On failure, cntlid is ignored by the caller (pass 0).
func EncodeConnectResponse(ferr *types.FabricError, cntlID uint16) []byte {
	out := make([]byte, connectRespLen)
	out[0] = byte(CapsuleConnect)
	writeStatus(out[1:], ferr)
	binary.BigEndian.PutUint16(out[7:9], cntlID)
	return out
}

// PropertyGetRequest is the decoded Property-Get capsule.
type PropertyGetRequest struct {
	Offset uint32
	Size   uint8
}

// DecodePropertyGet parses a Property-Get capsule body.
func DecodePropertyGet(body []byte) (PropertyGetRequest, error) {
	if len(body) != 4+1 {
		return PropertyGetRequest{}, fmt.Errorf("wire: property-get capsule: want %d bytes, got %d", 4+1, len(body))
	}
	return PropertyGetRequest{
		Offset: binary.BigEndian.Uint32(body[0:4]),
		Size:   body[4],
	}, nil
}

// EncodePropertyGetResponse builds the wire bytes for a Property-Get
// response. value is ignored by the caller when ferr is non-nil.
func EncodePropertyGetResponse(ferr *types.FabricError, value uint64) []byte {
	out := make([]byte, propGetRespLen)
	out[0] = byte(CapsulePropertyGet)
	writeStatus(out[1:], ferr)
	binary.BigEndian.PutUint64(out[7:15], value)
	return out
}

// PropertySetRequest is the decoded Property-Set capsule.
type PropertySetRequest struct {
	Offset uint32
	Size   uint8
	Value  uint64
}

// DecodePropertySet parses a Property-Set capsule body.
func DecodePropertySet(body []byte) (PropertySetRequest, error) {
	if len(body) != 4+1+8 {
		return PropertySetRequest{}, fmt.Errorf("wire: property-set capsule: want %d bytes, got %d", 4+1+8, len(body))
	}
	return PropertySetRequest{
		Offset: binary.BigEndian.Uint32(body[0:4]),
		Size:   body[4],
		Value:  binary.BigEndian.Uint64(body[5:13]),
	}, nil
}

// EncodePropertySetResponse builds the wire bytes for a Property-Set
// response.
func EncodePropertySetResponse(ferr *types.FabricError) []byte {
	out := make([]byte, propSetRespLen)
	out[0] = byte(CapsulePropertySet)
	writeStatus(out[1:], ferr)
	return out
}

// Type reads the leading discriminator byte of a capsule, returning the
// remaining body.
func Type(capsule []byte) (CapsuleType, []byte, error) {
	if len(capsule) < 1 {
		return 0, nil, fmt.Errorf("wire: empty capsule")
	}
	return CapsuleType(capsule[0]), capsule[1:], nil
}

func writeStatus(out []byte, ferr *types.FabricError) {
	if ferr == nil {
		return
	}
	out[0] = ferr.StatusCodeType
	binary.BigEndian.PutUint16(out[1:3], ferr.StatusCode)
	out[3] = ferr.IAttr
	binary.BigEndian.PutUint16(out[4:6], ferr.IPO)
}

func decodeNQN(field []byte) string {
	for i, b := range field {
		if b == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}
