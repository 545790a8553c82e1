package subsystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct{ closed bool }

func (f *fakeSession) Closed() bool { return f.closed }

func TestRegistry_ResolveNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("nqn.missing", "nqn.host")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_ResolveFound(t *testing.T) {
	r := NewRegistry()
	sub := &Subsystem{NQN: "nqn.test", Subtype: SubtypeNVM}
	r.Register(sub)

	got, err := r.Resolve("nqn.test", "nqn.host")
	require.NoError(t, err)
	assert.Same(t, sub, got)
}

func TestSubsystem_BindUnbind(t *testing.T) {
	sub := &Subsystem{NQN: "nqn.test"}
	assert.Nil(t, sub.Session())

	sess := &fakeSession{}
	sub.Bind(sess)
	assert.Same(t, sess, sub.Session())

	sub.Unbind()
	assert.Nil(t, sub.Session())
}

func TestSubsystem_ClosedSessionFreesSlot(t *testing.T) {
	sub := &Subsystem{NQN: "nqn.test"}
	sess := &fakeSession{}
	sub.Bind(sess)

	sess.closed = true
	assert.Nil(t, sub.Session(), "a closed session must not block a new Connect")
}
