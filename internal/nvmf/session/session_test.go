package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liujun01203/spdk/internal/nvmf/controller"
)

func newTestSession(maxConns int) *Session {
	vc := controller.NewDiscovery(controller.Config{DefaultMaxQueueDepth: 128, H2CMaxMsg: 8192, C2HMaxMsg: 8192})
	return New("nqn.test", vc, maxConns)
}

func TestNew(t *testing.T) {
	s := newTestSession(4)
	assert.NotEmpty(t, s.TraceID)
	assert.Equal(t, "nqn.test", s.Subnqn)
	assert.Equal(t, 0, s.NumConnections())
	assert.False(t, s.Closed())
}

func TestBindUnbind(t *testing.T) {
	s := newTestSession(4)
	admin := &Connection{Type: ConnTypeAdmin, QID: 0}
	io1 := &Connection{Type: ConnTypeIO, QID: 1}

	s.Bind(admin)
	s.Bind(io1)
	assert.Equal(t, 2, s.NumConnections())
	assert.Same(t, s, admin.Sess)

	conns := s.Connections()
	requireHeadInsertion(t, conns, io1, admin)

	s.Unbind(admin)
	assert.Equal(t, 1, s.NumConnections())
	assert.Equal(t, []*Connection{io1}, s.Connections())
}

func requireHeadInsertion(t *testing.T, conns []*Connection, first, second *Connection) {
	t.Helper()
	assert.Equal(t, []*Connection{first, second}, conns, "most recently bound connection must be head")
}

func TestAtConnectionLimit(t *testing.T) {
	s := newTestSession(1)
	admin := &Connection{Type: ConnTypeAdmin, QID: 0}
	s.Bind(admin)
	assert.True(t, s.AtConnectionLimit())
}

func TestDestroy(t *testing.T) {
	s := newTestSession(4)
	admin := &Connection{Type: ConnTypeAdmin, QID: 0}
	s.Bind(admin)

	var evicted []*Connection
	s.Destroy(func(c *Connection) { evicted = append(evicted, c) })

	assert.True(t, s.Closed())
	assert.Equal(t, 0, s.NumConnections())
	assert.Equal(t, []*Connection{admin}, evicted)
}
