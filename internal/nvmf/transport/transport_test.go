package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePort struct {
	name        string
	initErr     error
	acceptErr   error
	initCalled  bool
	stopCalled  bool
}

func (p *fakePort) Name() string { return p.name }
func (p *fakePort) Init(ctx context.Context) error {
	p.initCalled = true
	return p.initErr
}
func (p *fakePort) Fini(ctx context.Context) error         { return nil }
func (p *fakePort) AcceptorStart(ctx context.Context) error { return p.acceptErr }
func (p *fakePort) AcceptorStop(ctx context.Context)        { p.stopCalled = true }

func TestLookup_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakePort{name: "TCP"})

	p, ok := r.Lookup("tcp")
	assert.True(t, ok)
	assert.Equal(t, "TCP", p.Name())
}

func TestLookup_NotFound(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("rdma")
	assert.False(t, ok)
}

func TestInitAll_ContinuesPastFailure(t *testing.T) {
	r := NewRegistry()
	bad := &fakePort{name: "bad", initErr: errors.New("boom")}
	good := &fakePort{name: "good"}
	r.Register(bad)
	r.Register(good)

	succeeded := r.InitAll(context.Background())
	assert.Equal(t, 1, succeeded)
	assert.True(t, bad.initCalled)
	assert.True(t, good.initCalled)
}

func TestAcceptorStartAll_AbortsOnFirstFailure(t *testing.T) {
	r := NewRegistry()
	bad := &fakePort{name: "bad", acceptErr: errors.New("boom")}
	good := &fakePort{name: "good"}
	r.Register(bad)
	r.Register(good)

	err := r.AcceptorStartAll(context.Background())
	assert.Error(t, err)
}

func TestAcceptorStopAll_StopsEveryTransport(t *testing.T) {
	r := NewRegistry()
	a := &fakePort{name: "a"}
	b := &fakePort{name: "b"}
	r.Register(a)
	r.Register(b)

	r.AcceptorStopAll(context.Background())
	assert.True(t, a.stopCalled)
	assert.True(t, b.stopCalled)
}
