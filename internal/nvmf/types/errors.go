package types

import "fmt"

// Status code type (SCT) values. Only the generic and command-specific
// types appear in this target; media/path-related types never arise at
// the session/register layer.
const (
	StatusCodeTypeGeneric         uint8 = 0x0
	StatusCodeTypeCommandSpecific uint8 = 0x1
)

// Generic status codes (SCT = Generic).
const (
	StatusSuccess             uint16 = 0x00
	StatusInternalDeviceError uint16 = 0x06
)

// Fabrics command-specific status codes (SCT = Command Specific), scoped
// to the Connect/Property/Disconnect commands this target implements.
const (
	StatusFabricInvalidParam    uint16 = 0x02
	StatusFabricControllerBusy uint16 = 0x03
)

// FabricError carries a wire-ready Fabrics status outcome: the
// {status_code_type, status_code} pair every capsule response encodes,
// plus the iattr/ipo fields used by Invalid Parameter responses to point
// at the offending byte of the Connect command or data payload.
//
// iattr selects which structure ipo indexes into: 0 for the Connect
// command (SQE), 1 for the Connect data payload.
type FabricError struct {
	StatusCodeType uint8
	StatusCode     uint16
	IAttr          uint8
	IPO            uint16
	msg            string
}

func (e *FabricError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("fabric error: sct=0x%x sc=0x%x iattr=%d ipo=0x%x",
		e.StatusCodeType, e.StatusCode, e.IAttr, e.IPO)
}

// InvalidConnectCommandField builds the Invalid Parameter error pointing
// at a byte offset within the Connect SQE (iattr=0), mirroring
// INVALID_CONNECT_CMD in the original source.
func InvalidConnectCommandField(msg string, offset uint16) *FabricError {
	return &FabricError{
		StatusCodeType: StatusCodeTypeCommandSpecific,
		StatusCode:     StatusFabricInvalidParam,
		IAttr:          0,
		IPO:            offset,
		msg:            msg,
	}
}

// InvalidConnectDataField builds the Invalid Parameter error pointing at
// a byte offset within the Connect data payload (iattr=1), mirroring
// INVALID_CONNECT_DATA in the original source.
func InvalidConnectDataField(msg string, offset uint16) *FabricError {
	return &FabricError{
		StatusCodeType: StatusCodeTypeCommandSpecific,
		StatusCode:     StatusFabricInvalidParam,
		IAttr:          1,
		IPO:            offset,
		msg:            msg,
	}
}

// ErrControllerBusy reports that a Connect request was rejected because
// the target subsystem/session is already at capacity: an admin queue
// Connect against a subsystem with a live session, or an I/O queue
// Connect that would exceed max_connections_allowed.
func ErrControllerBusy(msg string) *FabricError {
	return &FabricError{
		StatusCodeType: StatusCodeTypeCommandSpecific,
		StatusCode:     StatusFabricControllerBusy,
		msg:            msg,
	}
}

// ErrInternalDeviceError reports a resource-allocation failure unrelated
// to the content of the request (e.g. session allocation).
func ErrInternalDeviceError(msg string) *FabricError {
	return &FabricError{
		StatusCodeType: StatusCodeTypeGeneric,
		StatusCode:     StatusInternalDeviceError,
		msg:            msg,
	}
}

// ConnectCommandFieldOffset returns the byte offset of a named field
// within the Fabrics Connect command SQE, for use with
// InvalidConnectCommandField. These mirror offsetof() on
// struct spdk_nvmf_fabric_connect_cmd in the original source.
func ConnectCommandFieldOffset(field string) uint16 {
	switch field {
	case "qid":
		return offsetConnectCmdQID
	case "sqsize":
		return offsetConnectCmdSQSize
	default:
		return 0
	}
}

// ConnectDataFieldOffset returns the byte offset of a named field within
// the Fabrics Connect data payload, for use with
// InvalidConnectDataField. These mirror offsetof() on
// struct spdk_nvmf_fabric_connect_data in the original source.
func ConnectDataFieldOffset(field string) uint16 {
	switch field {
	case "cntlid":
		return offsetConnectDataCntlID
	case "subnqn":
		return offsetConnectDataSubNQN
	default:
		return 0
	}
}

// Byte offsets within the Connect command/data structures, matching the
// wire layout described in spec.md §5.
const (
	offsetConnectCmdQID     uint16 = 2
	offsetConnectCmdSQSize  uint16 = 4
	offsetConnectDataCntlID uint16 = 0
	offsetConnectDataSubNQN uint16 = 72
)
