// Package target wires the session core's independent packages
// (subsystem, session, connect, property, poll, transport) into one
// running process: it owns the subsystem registry, the transport
// registry, and the capsule dispatcher the reference TCP transport
// drives.
//
// There is no equivalent single file in the original source -- target
// construction there happens across spdk_nvmf_tgt_init,
// spdk_nvmf_tgt_create_subsystem, and the transport's own init -- this
// package plays the role the teacher's cmd/dittofs/commands/start.go +
// its server-construction helpers play: the one place that knows about
// every package at once.
package target

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/liujun01203/spdk/internal/config"
	"github.com/liujun01203/spdk/internal/logger"
	"github.com/liujun01203/spdk/internal/metrics/prometheus"
	"github.com/liujun01203/spdk/internal/nvmf/connect"
	"github.com/liujun01203/spdk/internal/nvmf/controller"
	"github.com/liujun01203/spdk/internal/nvmf/poll"
	"github.com/liujun01203/spdk/internal/nvmf/property"
	"github.com/liujun01203/spdk/internal/nvmf/session"
	"github.com/liujun01203/spdk/internal/nvmf/subsystem"
	"github.com/liujun01203/spdk/internal/nvmf/transport"
	"github.com/liujun01203/spdk/internal/nvmf/transport/tcp"
	"github.com/liujun01203/spdk/internal/nvmf/types"
	"github.com/liujun01203/spdk/internal/nvmf/wire"
)

// Target owns every subsystem, session, and transport this process is
// currently running.
type Target struct {
	cfg         *config.TargetConfig
	subsystems  *subsystem.Registry
	transports  *transport.Registry
	connectCfg  connect.Config
	metrics     *prometheus.SessionMetrics

	mu        sync.Mutex
	byAddr    map[string]*session.Connection
	liveSess  map[*session.Session]struct{}
}

// New builds a Target from cfg, provisioning the subsystems cfg names
// and registering every transport cfg lists, but does not start
// accepting connections -- call Start for that.
func New(cfg *config.TargetConfig, metrics *prometheus.SessionMetrics) (*Target, error) {
	t := &Target{
		cfg:        cfg,
		subsystems: subsystem.NewRegistry(),
		transports: transport.NewRegistry(),
		metrics:    metrics,
		byAddr:     make(map[string]*session.Connection),
		liveSess:   make(map[*session.Session]struct{}),
	}

	for _, sc := range cfg.Subsystems {
		sub := &subsystem.Subsystem{NQN: sc.NQN, Subtype: parseSubtype(sc.Subtype)}
		t.subsystems.Register(sub)
	}

	t.connectCfg = connect.Config{
		ControllerConfig: controller.Config{
			DefaultMaxQueueDepth: uint16(cfg.Session.DefaultMaxQueueDepth),
			H2CMaxMsg:            uint32(cfg.Session.H2CMaxMsg),
			C2HMaxMsg:            uint32(cfg.Session.C2HMaxMsg),
			MaxRecvDataXfer:      uint32(cfg.Session.MaxRecvDataXfer),
		},
		MaxQueuesPerSession: cfg.Session.MaxQueuesPerSession,
		BackingIdentify:     backingIdentifyStub,
	}

	for _, tc := range cfg.Transports {
		switch tc.Name {
		case "tcp":
			port := tcp.New(tc.Addr, t.Dispatch)
			port.OnDisconnect(t.handleDisconnect)
			t.transports.Register(port)
		default:
			return nil, fmt.Errorf("target: unknown transport %q", tc.Name)
		}
	}

	return t, nil
}

// backingIdentifyStub stands in for the backing NVMe device's real
// Identify Controller data: NVMe command execution against a backing
// device is out of scope (spec.md Non-goals), so every NVM-subtype
// subsystem starts from a zero-valued base and lets
// types.NewNVMIdentify fill in the session-owned fields.
func backingIdentifyStub(subnqn string) (types.ControllerIdentify, error) {
	return types.ControllerIdentify{}, nil
}

func parseSubtype(s string) subsystem.Subtype {
	if s == "nvm" {
		return subsystem.SubtypeNVM
	}
	return subsystem.SubtypeDiscovery
}

// Start initializes and starts every registered transport's acceptor.
func (t *Target) Start(ctx context.Context) error {
	t.transports.InitAll(ctx)
	return t.transports.AcceptorStartAll(ctx)
}

// Stop stops every acceptor and tears down every transport.
func (t *Target) Stop(ctx context.Context) {
	t.transports.AcceptorStopAll(ctx)
	t.transports.FiniAll(ctx)
}

// RunPollLoop runs the session poll driver on a ticker until ctx is
// canceled, the runtime counterpart of repeatedly invoking
// spdk_nvmf_session_poll across every live session.
func (t *Target) RunPollLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.pollOnce(ctx)
		}
	}
}

func (t *Target) pollOnce(ctx context.Context) {
	t.mu.Lock()
	sessions := make([]*session.Session, 0, len(t.liveSess))
	for s := range t.liveSess {
		sessions = append(sessions, s)
	}
	t.mu.Unlock()

	active := 0
	for _, s := range sessions {
		if s.Closed() {
			t.mu.Lock()
			delete(t.liveSess, s)
			t.mu.Unlock()
			continue
		}
		active += s.NumConnections()
		// The reference TCP transport's Conn.Poll is always a no-op (its
		// own read goroutine already drives progress), so there is
		// nothing meaningful for Lookup to resolve to; a transport with
		// real per-tick backpressure would wire a live Conn here.
		_ = poll.Session(ctx, s, func(*session.Connection) poll.Conn { return nil }, t.metrics.RecordEviction)
	}
	t.metrics.SetSessionsActive(len(sessions))
	t.metrics.SetConnectionsActive(active)
}

// SessionInfo is a point-in-time snapshot of one live session, used by
// the "sessions list" CLI command and the debug HTTP endpoint.
type SessionInfo struct {
	TraceID     string `json:"trace_id"`
	Subnqn      string `json:"subnqn"`
	Enabled     bool   `json:"enabled"`
	Connections int    `json:"connections"`
}

// ActiveSessions returns a snapshot of every currently live session.
func (t *Target) ActiveSessions() []SessionInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]SessionInfo, 0, len(t.liveSess))
	for s := range t.liveSess {
		if s.Closed() {
			continue
		}
		out = append(out, SessionInfo{
			TraceID:     s.TraceID,
			Subnqn:      s.Subnqn,
			Enabled:     s.Controller.CC.EN(),
			Connections: s.NumConnections(),
		})
	}
	return out
}

// Dispatch decodes one capsule read by the TCP transport and routes it
// to the Connect or Property handler, implementing tcp.Handler.
func (t *Target) Dispatch(ctx context.Context, peerAddr string, capsule []byte) ([]byte, error) {
	kind, body, err := wire.Type(capsule)
	if err != nil {
		return nil, err
	}

	switch kind {
	case wire.CapsuleConnect:
		return t.dispatchConnect(ctx, peerAddr, body)
	case wire.CapsulePropertyGet:
		return t.dispatchPropertyGet(ctx, peerAddr, body)
	case wire.CapsulePropertySet:
		return t.dispatchPropertySet(ctx, peerAddr, body)
	default:
		return nil, fmt.Errorf("target: unknown capsule type %d", kind)
	}
}

func (t *Target) dispatchConnect(ctx context.Context, peerAddr string, body []byte) ([]byte, error) {
	req, err := wire.DecodeConnect(body)
	if err != nil {
		return nil, err
	}

	cmd := connect.Command{RecFmt: req.RecFmt, QID: req.QID, SQSize: req.SQSize}
	data := connect.Data{CntlID: req.CntlID, HostID: req.HostID, SubNQN: req.SubNQN, HostNQN: req.HostNQN}

	conn, resp, cerr := connect.Handle(ctx, t.subsystems, t.connectCfg, cmd, data)
	queueType := "io"
	if req.QID == 0 {
		queueType = "admin"
	}
	if cerr != nil {
		t.metrics.RecordConnect(queueType, false)
		return wire.EncodeConnectResponse(asFabricError(cerr), 0), nil
	}
	t.metrics.RecordConnect(queueType, true)

	t.mu.Lock()
	t.byAddr[peerAddr] = conn
	if conn.Sess != nil {
		t.liveSess[conn.Sess] = struct{}{}
	}
	t.mu.Unlock()

	return wire.EncodeConnectResponse(nil, resp.CntlID), nil
}

func (t *Target) dispatchPropertyGet(ctx context.Context, peerAddr string, body []byte) ([]byte, error) {
	req, err := wire.DecodePropertyGet(body)
	if err != nil {
		return nil, err
	}

	conn, ok := t.lookupConn(peerAddr)
	if !ok {
		return wire.EncodePropertyGetResponse(types.InvalidConnectCommandField("property get: no connection bound", 0), 0), nil
	}

	value, gerr := property.Get(ctx, conn.Sess.Controller, req.Offset, req.Size)
	if gerr != nil {
		return wire.EncodePropertyGetResponse(asFabricError(gerr), 0), nil
	}
	return wire.EncodePropertyGetResponse(nil, value), nil
}

func (t *Target) dispatchPropertySet(ctx context.Context, peerAddr string, body []byte) ([]byte, error) {
	req, err := wire.DecodePropertySet(body)
	if err != nil {
		return nil, err
	}

	conn, ok := t.lookupConn(peerAddr)
	if !ok {
		return wire.EncodePropertySetResponse(types.InvalidConnectCommandField("property set: no connection bound", 0)), nil
	}

	serr := property.Set(ctx, conn.Sess.Controller, req.Offset, req.Size, req.Value)
	reg := fmt.Sprintf("0x%x", req.Offset)
	t.metrics.RecordPropertySet(reg, serr == nil)
	if serr != nil {
		return wire.EncodePropertySetResponse(asFabricError(serr)), nil
	}
	return wire.EncodePropertySetResponse(nil), nil
}

func (t *Target) lookupConn(peerAddr string) (*session.Connection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	conn, ok := t.byAddr[peerAddr]
	return conn, ok
}

// asFabricError converts a handler error to its wire-ready FabricError,
// falling back to Internal Device Error for anything that was not
// already produced via types.InvalidConnect*/ErrControllerBusy/
// ErrInternalDeviceError.
func asFabricError(err error) *types.FabricError {
	if ferr, ok := err.(*types.FabricError); ok {
		return ferr
	}
	return types.ErrInternalDeviceError(err.Error())
}

// handleDisconnect unbinds the connection owning peerAddr from its
// session when the underlying socket closes, the counterpart of
// nvmf_disconnect firing on a transport-level connection teardown.
func (t *Target) handleDisconnect(peerAddr string) {
	t.mu.Lock()
	conn, ok := t.byAddr[peerAddr]
	delete(t.byAddr, peerAddr)
	t.mu.Unlock()
	if !ok {
		return
	}

	logger.Debug("target: connection closed, unbinding", logger.ClientAddr(peerAddr), logger.QID(conn.QID))
	if conn.Sess != nil {
		conn.Sess.Unbind(conn)
	}
}
