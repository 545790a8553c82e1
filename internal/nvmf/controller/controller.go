// Package controller implements the virtual controller state machine:
// register initialization for the Discovery and NVM subsystem subtypes,
// and the Controller Configuration (CC) property-set state machine that
// drives Enable and Shutdown transitions.
//
// Grounded bit-for-bit on nvmf_init_discovery_session_properties,
// nvmf_init_nvme_session_properties, and nvmf_prop_set_cc in
// original_source/lib/nvmf/session.c.
package controller

import (
	"fmt"

	"github.com/liujun01203/spdk/internal/nvmf/types"
)

// Default sizes assumed for the NVMe SQE/CQE when validating IOSQES and
// IOCQES on I/O Connect (CC writes accept any value). Both are fixed by the base
// NVMe specification and never vary per transport.
const (
	NVMeSQESize = 64
	NVMeCPLSize = 16
)

// log2 of the fixed NVMe SQE/CQE sizes, i.e. the only IOSQES/IOCQES
// values this target ever accepts (64 = 1<<6, 16 = 1<<4).
const (
	ValidIOSQES uint8 = 6
	ValidIOCQES uint8 = 4
)

// VirtualController owns the register block and identify data for one
// subsystem's session. There is exactly one VirtualController per live
// Session; it is created alongside the session and destroyed with it.
type VirtualController struct {
	Identify types.ControllerIdentify
	CAP      types.CAP
	VS       types.VS
	CC       types.CC
	CSTS     types.CSTS
}

// Config carries the target-wide policy values used to initialize a
// new virtual controller: queue depth, capsule sizes, and max transfer
// size. These come from internal/config rather than being compiled in,
// per SPEC_FULL.md's supplement of the original's compile-time
// constants into runtime configuration.
type Config struct {
	DefaultMaxQueueDepth uint16
	H2CMaxMsg            uint32
	C2HMaxMsg            uint32
	MaxRecvDataXfer      uint32
}

// NewDiscovery builds a virtual controller for a Discovery-subtype
// subsystem: every field is target-synthesized, there is no backing
// NVMe hardware to copy identify data from. Grounded on
// nvmf_init_discovery_session_properties.
func NewDiscovery(cfg Config) *VirtualController {
	cap := types.CAPBuilder{}.
		CQR(true).
		MQES(cfg.DefaultMaxQueueDepth - 1).
		CSSNVM(true).
		Build()

	return &VirtualController{
		Identify: types.NewDiscoveryIdentify(cfg.DefaultMaxQueueDepth, cfg.H2CMaxMsg, cfg.C2HMaxMsg),
		CAP:      cap,
		VS:       types.NewVS(1, 0, 0),
		CC:       types.CC(0),
		CSTS:     types.CSTS(0),
	}
}

// NewNVM builds a virtual controller for an NVM-subtype subsystem,
// starting from the backing controller's real identify data and
// overriding the fields the session layer owns. Grounded on
// nvmf_init_nvme_session_properties; cqr=0/to=1 (rather than
// Discovery's cqr=1) matches the original's use of the base
// Capabilities template for hardware-backed controllers.
func NewNVM(base types.ControllerIdentify, cfg Config) *VirtualController {
	cap := types.CAPBuilder{}.
		MQES(cfg.DefaultMaxQueueDepth - 1).
		CSSNVM(true).
		TO(1).
		Build()

	return &VirtualController{
		Identify: types.NewNVMIdentify(base, cfg.DefaultMaxQueueDepth, cfg.MaxRecvDataXfer, cfg.H2CMaxMsg, cfg.C2HMaxMsg),
		CAP:      cap,
		VS:       types.NewVS(1, 0, 0),
		CC:       types.CC(0),
		CSTS:     types.CSTS(0),
	}
}

// GetRegister returns the raw value of a named register for
// Property-Get. The caller (internal/nvmf/property) has already
// validated the offset/size against internal/nvmf/register.Table.
func (vc *VirtualController) GetRegister(name string) uint64 {
	switch name {
	case "cap":
		return uint64(vc.CAP)
	case "vs":
		return uint64(vc.VS)
	case "cc":
		return uint64(vc.CC)
	case "csts":
		return uint64(vc.CSTS)
	default:
		return 0
	}
}

// SetCC applies a Property-Set write to the Controller Configuration
// register. It diffs the incoming value against the current one,
// handles each recognized field (EN, SHN, IOSQES, IOCQES) in turn, and
// rejects the write outright if any bit outside those fields differs
// (CSS, MPS, AMS, or an undefined bit). Grounded verbatim on
// nvmf_prop_set_cc, including its quirks: IOSQES/IOCQES are accepted
// unvalidated here -- they are only checked against the fixed SQE/CQE
// sizes at I/O Connect time, in internal/nvmf/connect. An EN 1->0 write
// (controller reset) is not supported and is rejected outright, state
// left unchanged.
func (vc *VirtualController) SetCC(newCC types.CC) error {
	if types.ReservedBitsChanged(vc.CC, newCC) {
		return fmt.Errorf("controller: reserved bits of CC changed")
	}

	if vc.CC.EN() != newCC.EN() {
		if !newCC.EN() {
			return fmt.Errorf("controller: EN 1->0 (reset) is not supported")
		}
		vc.CC = vc.CC.WithEN(true)
		vc.CSTS = vc.CSTS.WithRDY(true)
	}

	if vc.CC.SHN() != newCC.SHN() {
		switch newCC.SHN() {
		case types.SHNNormal, types.SHNAbrupt:
			vc.CC = vc.CC.WithSHN(newCC.SHN()).WithEN(false)
			vc.CSTS = vc.CSTS.WithRDY(false).WithSHST(types.SHSTComplete)
		case types.SHNNone:
			vc.CC = vc.CC.WithSHN(types.SHNNone)
		default:
			return fmt.Errorf("controller: invalid SHN %d", newCC.SHN())
		}
	}

	if vc.CC.IOSQES() != newCC.IOSQES() {
		vc.CC = vc.CC.WithIOSQES(newCC.IOSQES())
	}

	if vc.CC.IOCQES() != newCC.IOCQES() {
		vc.CC = vc.CC.WithIOCQES(newCC.IOCQES())
	}

	return nil
}
