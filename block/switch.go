package block

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// KeyFunc computes a routing key for an agent arriving at a Switch. The
// returned value must be comparable — it is used as a map key.
type KeyFunc func(a *agent.Agent) any

// Switch routes agents by key immediately, with no buffering: construction
// supplies a KeyFunc, Connect populates the routing table, and Take
// computes the key and pushes straight through (spec.md §4.4). A missing
// key or nil target is a structural bug, not a recoverable condition.
type Switch struct {
	Base

	keyFunc KeyFunc
	routes  map[any]sim.Block
}

// NewSwitch constructs a Switch with an empty routing table.
func NewSwitch(s *sim.Simulator, keyFunc KeyFunc) *Switch {
	return &Switch{Base: newBase(s, nil), keyFunc: keyFunc, routes: make(map[any]sim.Block)}
}

// Connect maps key to target, replacing any existing route for that key.
func (sw *Switch) Connect(key any, target sim.Block) {
	sw.routes[key] = target
}

// Take computes the agent's routing key and pushes it to the
// corresponding target immediately. A key with no route, or a route that
// is nil, panics with ErrMissingRoute: spec.md §4.4 classifies this as a
// fatal failure, not a recoverable one, since it reflects an incomplete
// routing table rather than transient state.
func (sw *Switch) Take(a *agent.Agent) error {
	key := sw.keyFunc(a)
	target, ok := sw.routes[key]
	if !ok || target == nil {
		panic(sim.ErrMissingRoute)
	}
	sw.enter(sw, a)
	return target.Take(a)
}

// Tick does nothing: Switch never buffers agents between take and eject.
func (sw *Switch) Tick() {}

// HeldAgents is always empty.
func (sw *Switch) HeldAgents() []*agent.Agent { return nil }
