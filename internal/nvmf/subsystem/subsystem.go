// Package subsystem implements subsystem resolution: the in-memory
// registry that maps a (subnqn, hostnqn) pair from a Fabrics Connect
// request to the Subsystem it names, and the single session a
// subsystem may currently own.
//
// Grounded on spdk_nvmf_find_subsystem in
// original_source/lib/nvmf/session.c; the original treats subsystem
// provisioning as an external collaborator, but a runnable repo needs a
// concrete in-tree implementation to exercise Connect end-to-end (see
// SPEC_FULL.md §5). Subsystem/namespace administration beyond simple
// registration remains out of scope.
package subsystem

import (
	"errors"
	"sync"
)

// Subtype distinguishes a Discovery-only subsystem from an NVM one;
// the virtual controller's register initialization differs per subtype
// (internal/nvmf/controller.NewDiscovery vs NewNVM).
type Subtype int

const (
	SubtypeDiscovery Subtype = iota
	SubtypeNVM
)

// ErrNotFound is returned when no subsystem matches the requested
// (subnqn, hostnqn) pair, mirroring spdk_nvmf_find_subsystem returning
// NULL.
var ErrNotFound = errors.New("subsystem: not found")

// Session is the narrow view subsystem needs of a live session: just
// enough to enforce "one session per subsystem" without this package
// depending on internal/nvmf/session directly.
type Session interface {
	// Closed reports whether the session has been torn down; a closed
	// session frees the subsystem's single-session slot.
	Closed() bool
}

// Subsystem is one provisioned NVMe-oF target endpoint: an NQN plus the
// subtype governing controller initialization, and the (at most one)
// live session currently bound to it.
type Subsystem struct {
	mu      sync.Mutex
	NQN     string
	Subtype Subtype
	session Session
}

// Session returns the subsystem's current session, or nil if none is
// bound.
func (s *Subsystem) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.Closed() {
		s.session = nil
	}
	return s.session
}

// Bind attaches a session to the subsystem. The caller (Connect
// handler) must have already verified via Session() that no live
// session is bound.
func (s *Subsystem) Bind(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
}

// Unbind detaches the subsystem's current session, e.g. on session
// destruction.
func (s *Subsystem) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

// Registry resolves (subnqn, hostnqn) pairs to provisioned Subsystems.
// Host-level access control beyond "does a subsystem with this NQN
// exist" is not modeled; the original source's host allow-list is part
// of the subsystem/namespace administration surface this spec excludes.
type Registry struct {
	mu    sync.RWMutex
	byNQN map[string]*Subsystem
}

// NewRegistry creates an empty subsystem registry.
func NewRegistry() *Registry {
	return &Registry{byNQN: make(map[string]*Subsystem)}
}

// Register adds a subsystem to the registry, keyed by its NQN.
func (r *Registry) Register(sub *Subsystem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byNQN[sub.NQN] = sub
}

// Resolve looks up the subsystem named by subnqn. hostnqn is accepted
// for symmetry with spdk_nvmf_find_subsystem's signature and future
// host-level filtering; this registry does not yet filter on it.
func (r *Registry) Resolve(subnqn, hostnqn string) (*Subsystem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.byNQN[subnqn]
	if !ok {
		return nil, ErrNotFound
	}
	return sub, nil
}
