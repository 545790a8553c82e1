// Package poll implements the session poll driver: the safe
// iterate-and-evict pass over a session's connections that drives
// transport progress and disconnects any connection whose transport
// reports an error.
//
// Grounded verbatim on spdk_nvmf_session_poll in
// original_source/lib/nvmf/session.c: TAILQ_FOREACH_SAFE becomes a
// snapshot-then-iterate loop over session.Connections(), since Go maps
// and slices do not support safe-mutate-during-range the way a TAILQ
// does.
package poll

import (
	"context"

	"github.com/liujun01203/spdk/internal/logger"
	"github.com/liujun01203/spdk/internal/nvmf/session"
)

// Conn is the transport-level operations the poll driver needs on a
// bound connection: progress the connection and, on eviction, release
// its transport resources. Concrete transports
// (internal/nvmf/transport) implement this alongside
// session.Connection.
type Conn interface {
	// Poll advances the connection's transport state by one tick. A
	// non-nil error evicts the connection from its session, mirroring
	// conn_poll(conn) < 0 in the original.
	Poll(ctx context.Context) error
	// Close releases the connection's transport resources, mirroring
	// conn->transport->conn_fini(conn).
	Close()
}

// Lookup resolves a session.Connection to its transport-level Conn.
// The poll driver is deliberately ignorant of transport wiring; the
// caller supplies this so the same driver works across every
// registered transport.
type Lookup func(*session.Connection) Conn

// Session runs one poll pass over sess's connections using lookup to
// find each connection's transport handle. onEvict, if non-nil, is
// called once per evicted connection (wired to metrics by the caller).
// Always returns nil, matching spdk_nvmf_session_poll's unconditional
// `return 0`: a per-connection transport failure disconnects that
// connection but never fails the poll call itself.
func Session(ctx context.Context, sess *session.Session, lookup Lookup, onEvict func()) error {
	for _, conn := range sess.Connections() {
		transportConn := lookup(conn)
		if transportConn == nil {
			continue
		}
		if err := transportConn.Poll(ctx); err != nil {
			logger.DebugCtx(ctx, "poll: transport failed, disconnecting",
				logger.QID(conn.QID), logger.Err(err))
			sess.Unbind(conn)
			transportConn.Close()
			if onEvict != nil {
				onEvict()
			}
		}
	}
	return nil
}
