// Package connect implements the Fabrics Connect handler: admission of
// a new admin or I/O queue connection onto a subsystem's session.
//
// Grounded verbatim on spdk_nvmf_session_connect in
// original_source/lib/nvmf/session.c, styled after the teacher's
// two-layer handler shape (internal/protocol/nfs/v4/handlers) -- a thin
// wire-facing function (Handle) delegating to pure, unit-testable
// admission logic (admitAdmin/admitIO) that never touches encode/decode
// concerns.
package connect

import (
	"context"
	"log/slog"

	"github.com/liujun01203/spdk/internal/logger"
	"github.com/liujun01203/spdk/internal/nvmf/controller"
	"github.com/liujun01203/spdk/internal/nvmf/session"
	"github.com/liujun01203/spdk/internal/nvmf/subsystem"
	"github.com/liujun01203/spdk/internal/nvmf/types"
)

// DynamicCntlID is the sentinel value a host must send on an admin
// Connect to request the target's (only supported) dynamic controller
// ID assignment.
const DynamicCntlID uint16 = 0xFFFF

// FixedCntlID is the controller ID this target always assigns and the
// only value an I/O Connect may present.
const FixedCntlID uint16 = 0

// Command is the Fabrics Connect command capsule fields this handler
// reads.
type Command struct {
	RecFmt uint16
	QID    uint16
	SQSize uint16
}

// Data is the Fabrics Connect data payload fields this handler reads.
type Data struct {
	CntlID  uint16
	HostID  [16]byte
	SubNQN  string
	HostNQN string
}

// Response is the Fabrics Connect response capsule this handler
// populates on success.
type Response struct {
	CntlID uint16
}

// Registry is the subset of subsystem.Registry the handler needs,
// narrowed for testability.
type Registry interface {
	Resolve(subnqn, hostnqn string) (*subsystem.Subsystem, error)
}

// Config carries the policy values needed to construct a new session's
// virtual controller and connection-limit policy.
type Config struct {
	ControllerConfig      controller.Config
	MaxQueuesPerSession   int
	BackingIdentify       func(subnqn string) (types.ControllerIdentify, error)
}

// Handle processes one Fabrics Connect request against the given
// registry and configuration, returning the populated response or a
// FabricError ready to be written to the wire. It mirrors
// spdk_nvmf_session_connect field for field: the subsystem is resolved
// first for both queue types; the admin-queue branch then allocates a
// session; the I/O-queue branch
// validates against an existing, enabled session.
func Handle(ctx context.Context, reg Registry, cfg Config, cmd Command, data Data) (*session.Connection, Response, error) {
	logger.DebugCtx(ctx, "connect: request",
		slog.Uint64("recfmt", uint64(cmd.RecFmt)),
		logger.QID(cmd.QID),
		slog.Uint64("sqsize", uint64(cmd.SQSize)),
		logger.Subsystem(data.SubNQN),
		logger.HostNQN(data.HostNQN),
	)

	sub, err := reg.Resolve(data.SubNQN, data.HostNQN)
	if err != nil {
		return nil, Response{}, types.InvalidConnectDataField("connect: subsystem not found",
			types.ConnectDataFieldOffset("subnqn"))
	}

	if cmd.QID == 0 {
		conn, resp, err := admitAdmin(sub, cfg, data)
		if err != nil {
			return nil, Response{}, err
		}
		return conn, resp, nil
	}

	return admitIO(sub, data, cmd)
}

// admitAdmin handles qid == 0: dynamic CNTLID negotiation, the
// "already connected" busy check, and new-session allocation.
func admitAdmin(sub *subsystem.Subsystem, cfg Config, data Data) (*session.Connection, Response, error) {
	if data.CntlID != DynamicCntlID {
		return nil, Response{}, types.InvalidConnectDataField(
			"connect: only dynamic controller mode is supported",
			types.ConnectDataFieldOffset("cntlid"))
	}

	if sub.Session() != nil {
		return nil, Response{}, types.ErrControllerBusy("connect: subsystem already has a connected controller")
	}

	var vc *controller.VirtualController
	if sub.Subtype == subsystem.SubtypeNVM {
		base, err := cfg.BackingIdentify(sub.NQN)
		if err != nil {
			return nil, Response{}, types.ErrInternalDeviceError("connect: failed to read backing controller identify data")
		}
		vc = controller.NewNVM(base, cfg.ControllerConfig)
	} else {
		vc = controller.NewDiscovery(cfg.ControllerConfig)
	}

	sess := session.New(sub.NQN, vc, cfg.MaxQueuesPerSession)
	sub.Bind(sess)

	conn := &session.Connection{Type: session.ConnTypeAdmin, QID: 0}
	sess.Bind(conn)

	return conn, Response{CntlID: FixedCntlID}, nil
}

// admitIO handles qid > 0: fixed CNTLID verification, the enabled-
// controller precondition, queue entry size validation, and the
// per-session connection limit.
func admitIO(sub *subsystem.Subsystem, data Data, cmd Command) (*session.Connection, Response, error) {
	if data.CntlID != FixedCntlID {
		return nil, Response{}, types.InvalidConnectDataField(
			"connect: unknown controller ID",
			types.ConnectDataFieldOffset("cntlid"))
	}

	sessIface := sub.Session()
	sess, _ := sessIface.(*session.Session)
	if sess == nil || !sess.Controller.CC.EN() {
		return nil, Response{}, types.InvalidConnectCommandField(
			"connect: I/O connect before controller was enabled",
			types.ConnectCommandFieldOffset("qid"))
	}

	if 1<<sess.Controller.CC.IOSQES() != controller.NVMeSQESize {
		return nil, Response{}, types.InvalidConnectCommandField(
			"connect: invalid IOSQES",
			types.ConnectCommandFieldOffset("qid"))
	}

	if 1<<sess.Controller.CC.IOCQES() != controller.NVMeCPLSize {
		return nil, Response{}, types.InvalidConnectCommandField(
			"connect: invalid IOCQES",
			types.ConnectCommandFieldOffset("qid"))
	}

	if sess.AtConnectionLimit() {
		return nil, Response{}, types.ErrControllerBusy("connect: connection limit reached")
	}

	conn := &session.Connection{Type: session.ConnTypeIO, QID: cmd.QID}
	sess.Bind(conn)

	return conn, Response{CntlID: FixedCntlID}, nil
}
