// Package transport implements the Transport Port abstraction: a
// capability-set interface every wire transport (TCP, RDMA, ...)
// implements, and a name-indexed Registry driving init/fini and
// acceptor start/stop across every registered transport.
//
// Grounded verbatim on spdk_nvmf_transport_init/_fini/_get and
// spdk_nvmf_acceptor_start/_stop in
// original_source/lib/nvmf/transport.c.
package transport

import (
	"context"
	"strings"

	"github.com/liujun01203/spdk/internal/logger"
)

// Port is the capability set a transport exposes to the target core:
// lifecycle (Init/Fini), acceptor control (AcceptorStart/AcceptorStop),
// and a human-readable Name used for case-insensitive lookup, matching
// the original's g_transports[] + strcasecmp(transport->name, ...)
// scheme.
type Port interface {
	Name() string
	Init(ctx context.Context) error
	Fini(ctx context.Context) error
	AcceptorStart(ctx context.Context) error
	AcceptorStop(ctx context.Context)
}

// Registry holds every transport this build was compiled with,
// replacing the original's static g_transports[] array (which is
// populated at compile time via #ifdef; here internal/nvmf/target
// calls Register once per configured transport when it is constructed).
type Registry struct {
	ports []Port
}

// NewRegistry creates an empty transport registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a transport to the registry.
func (r *Registry) Register(p Port) {
	r.ports = append(r.ports, p)
}

// Lookup finds a registered transport by name, case-insensitively.
// Grounded on spdk_nvmf_transport_get's strcasecmp loop.
func (r *Registry) Lookup(name string) (Port, bool) {
	for _, p := range r.ports {
		if strings.EqualFold(p.Name(), name) {
			return p, true
		}
	}
	return nil, false
}

// InitAll initializes every registered transport, continuing past
// individual failures and logging each one -- the original counts
// successes and proceeds regardless, since a target may run with a
// partial transport set.
func (r *Registry) InitAll(ctx context.Context) (succeeded int) {
	for _, p := range r.ports {
		if err := p.Init(ctx); err != nil {
			logger.ErrorCtx(ctx, "transport: init failed", logger.Transport(p.Name()), logger.Err(err))
			continue
		}
		succeeded++
	}
	return succeeded
}

// FiniAll tears down every registered transport, continuing past
// individual failures. Grounded on spdk_nvmf_transport_fini.
func (r *Registry) FiniAll(ctx context.Context) (succeeded int) {
	for _, p := range r.ports {
		if err := p.Fini(ctx); err != nil {
			logger.ErrorCtx(ctx, "transport: fini failed", logger.Transport(p.Name()), logger.Err(err))
			continue
		}
		succeeded++
	}
	return succeeded
}

// AcceptorStartAll starts every registered transport's acceptor,
// aborting at the first failure. Grounded on spdk_nvmf_acceptor_start,
// which returns -1 on the first transport that fails to start.
func (r *Registry) AcceptorStartAll(ctx context.Context) error {
	for _, p := range r.ports {
		if err := p.AcceptorStart(ctx); err != nil {
			logger.ErrorCtx(ctx, "transport: acceptor start failed", logger.Transport(p.Name()), logger.Err(err))
			return err
		}
	}
	return nil
}

// AcceptorStopAll stops every registered transport's acceptor
// unconditionally, matching spdk_nvmf_acceptor_stop (no early return on
// a stop failure since stop only ever logs in the original).
func (r *Registry) AcceptorStopAll(ctx context.Context) {
	for _, p := range r.ports {
		p.AcceptorStop(ctx)
	}
}
