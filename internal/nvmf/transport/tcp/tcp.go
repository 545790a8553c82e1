// Package tcp implements a reference Transport Port over net.Listener:
// capsules are framed as a 4-byte big-endian length prefix followed by
// the capsule bytes, a length-prefixed analogue of the RPC
// record-marking framing the teacher parses in
// internal/adapter/nfs/connection.go (ReadFragmentHeader/
// ReadRPCMessage), generalized here from RPC fragments to Fabric
// capsules.
//
// Command/data interpretation and the Connect/Property wire formats
// belong to internal/nvmf/connect and internal/nvmf/property; this
// package only owns accept, framing, and per-connection poll/close.
package tcp

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/liujun01203/spdk/internal/logger"
)

// MaxCapsuleSize bounds a single capsule read to protect against a
// corrupt or hostile length prefix exhausting memory, mirroring
// ValidateFragmentSize's role in the teacher's RPC framing.
const MaxCapsuleSize = 256 * 1024

// Handler processes one decoded capsule read from a connection and
// returns the response bytes to write back, framed the same way.
type Handler func(ctx context.Context, peerAddr string, capsule []byte) ([]byte, error)

// Port is a reference TCP Transport Port implementation.
type Port struct {
	addr    string
	handler Handler

	// onDisconnect, if set, is called once a connection's read loop
	// exits for any reason, keyed by the same peerAddr Handler saw. The
	// session core (internal/nvmf/target) uses this to unbind the
	// connection from its session; this package stays ignorant of
	// sessions entirely.
	onDisconnect func(peerAddr string)

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Conn]struct{}
}

// New creates a TCP transport listening on addr, dispatching every
// decoded capsule to handler.
func New(addr string, handler Handler) *Port {
	return &Port{addr: addr, handler: handler, conns: make(map[*Conn]struct{})}
}

// OnDisconnect registers fn to run when a connection's read loop exits.
func (p *Port) OnDisconnect(fn func(peerAddr string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDisconnect = fn
}

// Name returns the transport's registry name.
func (p *Port) Name() string { return "tcp" }

// Init is a no-op for TCP: there is no driver-level resource to
// allocate ahead of AcceptorStart. Grounded on the TCP transport's
// conn_init counterpart in the original being a thin per-connection
// setup, with nothing at the transport-wide init step.
func (p *Port) Init(ctx context.Context) error { return nil }

// Fini closes any connections still tracked by the port.
func (p *Port) Fini(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := range p.conns {
		c.Close()
	}
	return nil
}

// AcceptorStart begins listening and spawns the accept loop.
func (p *Port) AcceptorStart(ctx context.Context) error {
	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("tcp transport: listen %s: %w", p.addr, err)
	}
	p.mu.Lock()
	p.listener = ln
	p.mu.Unlock()

	go p.acceptLoop(ctx, ln)
	return nil
}

// AcceptorStop closes the listener, unblocking the accept loop.
func (p *Port) AcceptorStop(ctx context.Context) {
	p.mu.Lock()
	ln := p.listener
	p.listener = nil
	p.mu.Unlock()
	if ln != nil {
		_ = ln.Close()
	}
}

func (p *Port) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			logger.DebugCtx(ctx, "tcp transport: accept loop exiting", logger.Err(err))
			return
		}
		conn := &Conn{netConn: nc, handler: p.handler, peerAddr: nc.RemoteAddr().String()}
		p.mu.Lock()
		p.conns[conn] = struct{}{}
		onDisconnect := p.onDisconnect
		p.mu.Unlock()
		go conn.serve(ctx, onDisconnect)
	}
}

// Conn is one accepted TCP connection, reading and dispatching
// length-prefixed capsules serially.
type Conn struct {
	netConn  net.Conn
	handler  Handler
	peerAddr string

	closeOnce sync.Once
}

// Poll always returns nil and reads nothing. In this reference
// transport, serve() already runs the read loop on its own goroutine,
// so there is no per-tick work for the session poll driver
// (internal/nvmf/poll); a production transport with its own I/O thread
// would instead surface backpressure or queue depth here.
func (c *Conn) Poll(ctx context.Context) error {
	return nil
}

// Close tears down the underlying network connection.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		_ = c.netConn.Close()
	})
}

func (c *Conn) serve(ctx context.Context, onDisconnect func(peerAddr string)) {
	defer c.Close()
	if onDisconnect != nil {
		defer onDisconnect(c.peerAddr)
	}
	for {
		capsule, err := c.readCapsule()
		if err != nil {
			if err != io.EOF {
				logger.DebugCtx(ctx, "tcp transport: read error",
					logger.ClientAddr(c.peerAddr), logger.Err(err))
			}
			return
		}

		resp, err := c.handler(ctx, c.peerAddr, capsule)
		if err != nil {
			logger.DebugCtx(ctx, "tcp transport: handler error",
				logger.ClientAddr(c.peerAddr), logger.Err(err))
			return
		}

		if err := c.writeCapsule(resp); err != nil {
			logger.DebugCtx(ctx, "tcp transport: write error",
				logger.ClientAddr(c.peerAddr), logger.Err(err))
			return
		}
	}
}

// readCapsule reads one length-prefixed capsule, mirroring
// ReadFragmentHeader + ValidateFragmentSize + ReadRPCMessage in the
// teacher's RPC framing, generalized to a plain 4-byte length prefix
// (Fabric capsules have no last-fragment bit).
func (c *Conn) readCapsule() ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(c.netConn, lenBuf[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > MaxCapsuleSize {
		return nil, fmt.Errorf("tcp transport: capsule too large: %d bytes", length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(c.netConn, buf); err != nil {
		return nil, fmt.Errorf("tcp transport: read capsule: %w", err)
	}
	return buf, nil
}

func (c *Conn) writeCapsule(capsule []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(capsule)))
	if _, err := c.netConn.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := c.netConn.Write(capsule)
	return err
}
