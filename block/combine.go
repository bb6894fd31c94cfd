package block

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// Combine holds at most one container agent and attaches up to
// MaxPickups pickup agents to it as children before ejecting the
// container downstream (spec.md §4.4). It exposes two input ports:
// Combine itself (the container port, reached via ordinary Take) and
// PickupPort() (a thin adapter forwarding to the pickup intake) — the
// same way a two-output block exposes extra numbered Outputs slots, just
// mirrored onto the input side.
type Combine struct {
	Base
	Outputs

	maxPickups int
	container  *agent.Agent
	pickups    []*agent.Agent
}

// NewCombine constructs a Combine that attaches up to maxPickups pickups
// per container.
func NewCombine(s *sim.Simulator, maxPickups int) *Combine {
	return &Combine{Base: newBase(s, nil), maxPickups: maxPickups}
}

// pickupPort adapts Combine's pickup intake to sim.Block so an upstream
// Queue can Connect directly to it.
type pickupPort struct {
	c *Combine
}

func (p pickupPort) ID() uint64                 { return p.c.id }
func (p pickupPort) Tick()                      {}
func (p pickupPort) HeldAgents() []*agent.Agent { return p.c.pickups }
func (p pickupPort) Take(a *agent.Agent) error  { return p.c.takePickup(a) }

// PickupPort returns the sim.Block an upstream Queue should Connect to
// for the pickup input. The container input is Combine itself.
func (cb *Combine) PickupPort() sim.Block { return pickupPort{c: cb} }

// Take is the container input: it requires an upstream Queue. A container
// arriving while one is already held is overflow — recoverable, like an
// insufficient Seize — so it returns ErrNotAdmissible without mutating any
// state, leaving the upstream Queue to retry the agent on a later tick.
// On success it stores the agent as the held container and immediately
// tries to drain any already-queued pickups into it.
func (cb *Combine) Take(a *agent.Agent) error {
	requireQueueUpstream(a)
	if cb.container != nil {
		return sim.ErrNotAdmissible
	}
	cb.enter(cb, a)
	cb.container = a
	cb.drainPickups()
	return nil
}

// takePickup mirrors Take's overflow handling: a pickup arriving when the
// waiting list is already at maxPickups (and no container is held to drain
// it into) returns ErrNotAdmissible instead of mutating state, so its
// upstream Queue retries it later.
func (cb *Combine) takePickup(a *agent.Agent) error {
	requireQueueUpstream(a)
	if cb.container == nil {
		if len(cb.pickups) >= cb.maxPickups {
			return sim.ErrNotAdmissible
		}
		cb.enter(cb, a)
		cb.pickups = append(cb.pickups, a)
		return nil
	}
	cb.enter(cb, a)
	cb.attach(a)
	return nil
}

// attach links pickup as a child of the held container and, if that
// reaches maxPickups, ejects the container downstream and clears the
// slot.
func (cb *Combine) attach(pickup *agent.Agent) {
	container := cb.container
	container.Children = append(container.Children, pickup)
	pickup.Parents = append(pickup.Parents, container)
	if len(container.Children) >= cb.maxPickups {
		cb.container = nil
		if err := cb.eject(0, container); err != nil {
			panic(err)
		}
	}
}

// drainPickups attaches as many already-queued pickups as possible to the
// held container (spec.md §4.4: "tick drains any queued pickups into a
// newly arrived container").
func (cb *Combine) drainPickups() {
	for cb.container != nil && len(cb.pickups) > 0 {
		next := cb.pickups[0]
		cb.pickups = cb.pickups[1:]
		cb.attach(next)
	}
}

// Tick drains any pickups that arrived before a container did.
func (cb *Combine) Tick() {
	cb.drainPickups()
}

// HeldAgents returns the held container (if any) plus every queued
// pickup.
func (cb *Combine) HeldAgents() []*agent.Agent {
	held := make([]*agent.Agent, 0, len(cb.pickups)+1)
	if cb.container != nil {
		held = append(held, cb.container)
	}
	return append(held, cb.pickups...)
}
