// Package session implements the per-subsystem session: the ordered
// connection list, admission counters, and the virtual controller that
// a session's Fabrics Connect brought into existence.
//
// Grounded on spdk_nvmf_session_connect/_destruct/nvmf_disconnect in
// original_source/lib/nvmf/session.c, and styled after the teacher's
// Session type in
// internal/protocol/nfs/v4/state/session.go (a plain data type
// constructed by New and independent of any session-manager
// singleton -- the Connect handler owns registration).
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/liujun01203/spdk/internal/nvmf/controller"
)

// ConnType distinguishes the single admin queue connection (qid == 0)
// from I/O queue connections (qid > 0).
type ConnType int

const (
	ConnTypeAdmin ConnType = iota
	ConnTypeIO
)

// Connection is the narrow view a Session needs of a bound transport
// connection: enough to order, evict, and count it. The transport
// layer's Port/Conn types (internal/nvmf/transport) do not hold a
// Connection; internal/nvmf/target maps each transport peer address to
// its Connection.
type Connection struct {
	Type ConnType
	QID  uint16
	Sess *Session
}

// Session is the state a single successful admin-queue Connect creates:
// a virtual controller, and the ordered set of connections (admin +
// I/O) bound to it.
//
// TraceID is an internal correlation id for logs/metrics only; it never
// appears on the wire (the wire cntlid returned to every Connect is
// always 0, per spec.md §4.1).
type Session struct {
	mu sync.Mutex

	TraceID string
	Subnqn  string

	Controller *controller.VirtualController

	connections          []*Connection // head-insertion order, like TAILQ_INSERT_HEAD
	numConnections       int
	maxConnectionsAllowed int

	closed bool
}

// New creates a session owning vc, with room for at most
// maxConnections connections (including the admin connection).
// Grounded on the session allocation + TAILQ_INIT block of
// spdk_nvmf_session_connect.
func New(subnqn string, vc *controller.VirtualController, maxConnections int) *Session {
	return &Session{
		TraceID:               uuid.NewString(),
		Subnqn:                subnqn,
		Controller:            vc,
		maxConnectionsAllowed: maxConnections,
	}
}

// NumConnections returns the current connection count.
func (s *Session) NumConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numConnections
}

// AtConnectionLimit reports whether admitting one more I/O connection
// would exceed max_connections_allowed, mirroring the check in
// spdk_nvmf_session_connect's I/O queue branch.
func (s *Session) AtConnectionLimit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numConnections >= s.maxConnectionsAllowed
}

// Bind inserts a connection at the head of the session's connection
// list and increments num_connections, matching
// TAILQ_INSERT_HEAD(&session->connections, conn, link);
// session->num_connections++ in the original.
func (s *Session) Bind(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn.Sess = s
	s.connections = append([]*Connection{conn}, s.connections...)
	s.numConnections++
}

// Unbind removes a connection from the session, decrementing
// num_connections. It is a no-op if conn is not currently bound.
// Grounded on nvmf_disconnect.
func (s *Session) Unbind(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.connections {
		if c == conn {
			s.connections = append(s.connections[:i], s.connections[i+1:]...)
			s.numConnections--
			return
		}
	}
}

// Connections returns a snapshot of the session's connections, in
// head-insertion order (most recently bound first).
func (s *Session) Connections() []*Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Connection, len(s.connections))
	copy(out, s.connections)
	return out
}

// Closed reports whether Destroy has been called. Implements
// subsystem.Session so a Subsystem can tell a stale back-pointer from
// a live one without importing this package.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Destroy tears down every connection bound to the session and marks
// it closed. The caller is responsible for unbinding the session from
// its subsystem (subsystem.Subsystem.Unbind) and for calling the
// transport's per-connection teardown; this mirrors
// spdk_nvmf_session_destruct's TAILQ walk without reaching into the
// transport layer directly, keeping this package free of a transport
// import.
func (s *Session) Destroy(evict func(*Connection)) {
	s.mu.Lock()
	conns := make([]*Connection, len(s.connections))
	copy(conns, s.connections)
	s.connections = nil
	s.numConnections = 0
	s.closed = true
	s.mu.Unlock()

	for _, c := range conns {
		if evict != nil {
			evict(c)
		}
	}
}
