package types

// SGLSupport describes the Scatter Gather List support flags reported
// by Identify Controller.
type SGLSupport struct {
	KeyedSGL bool
	SGLOffset bool
}

// FabricsTrailer is the NVMe-oF specific trailer appended to the
// Identify Controller data structure (bytes 1792-2047 of the payload in
// the base spec). Every field here is target-wide policy, not
// per-connection state.
type FabricsTrailer struct {
	// IOCCSZ is the maximum I/O command capsule size, in 16-byte units.
	IOCCSZ uint32
	// IORCSZ is the maximum I/O response capsule size, in 16-byte units.
	IORCSZ uint32
	// ICDOFF is the in-capsule data offset, in 16-byte units.
	ICDOFF uint16
	// CtrlAttr reports controller model: 0 = dynamic, 1 = static.
	CtrlAttr uint8
	// MSDBD is the maximum SGL data block descriptors per capsule.
	MSDBD uint8
}

// ControllerIdentify is the subset of the Identify Controller data
// structure this target populates: vendor-neutral admin-queue-derived
// fields plus the Fabrics trailer. Namespace/command-set specific
// fields are out of scope (spec.md Non-goals: NVMe command execution).
type ControllerIdentify struct {
	CntlID uint16
	AERL   uint8
	KAS    uint16 // Keep Alive Support, 100ms units
	MaxCmd uint16 // MAXCMD: max outstanding commands
	MDTS   uint8  // Maximum Data Transfer Size, in units of MPSMIN
	SGLs   SGLSupport
	EDLP   bool // extended data for get log page supported
	Fabrics FabricsTrailer
}

// NewDiscoveryIdentify builds the Identify Controller data for a
// Discovery-subtype virtual controller: entirely target-synthesized,
// with no backing hardware identify data to copy from. Grounded on
// nvmf_init_discovery_session_properties in the original source.
func NewDiscoveryIdentify(maxQueueDepth uint16, h2cMaxMsg, c2hMaxMsg uint32) ControllerIdentify {
	return ControllerIdentify{
		CntlID: 0,
		MaxCmd: maxQueueDepth,
		EDLP:   true,
		SGLs:   SGLSupport{KeyedSGL: true, SGLOffset: true},
		Fabrics: FabricsTrailer{
			IOCCSZ:   h2cMaxMsg / 16,
			IORCSZ:   c2hMaxMsg / 16,
			ICDOFF:   0,
			CtrlAttr: 0,
			MSDBD:    1,
		},
	}
}

// NewNVMIdentify builds the Identify Controller data for an NVM-subtype
// virtual controller, starting from the backing controller's real
// identify data (base) and overriding the fields the NVMe-oF session
// layer owns. Grounded on nvmf_init_nvme_session_properties.
func NewNVMIdentify(base ControllerIdentify, maxQueueDepth uint16, maxRecvDataXfer, h2cMaxMsg, c2hMaxMsg uint32) ControllerIdentify {
	out := base
	out.AERL = 0
	out.CntlID = 0
	out.KAS = 10
	out.MaxCmd = maxQueueDepth
	out.MDTS = uint8(maxRecvDataXfer / 4096)
	out.SGLs = SGLSupport{KeyedSGL: true, SGLOffset: true}
	out.Fabrics = FabricsTrailer{
		IOCCSZ:   h2cMaxMsg / 16,
		IORCSZ:   c2hMaxMsg / 16,
		ICDOFF:   0,
		CtrlAttr: 0,
		MSDBD:    1,
	}
	return out
}
