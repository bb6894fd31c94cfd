package block

import (
	"fmt"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

const restrictedAreaExtraKey = "block.restricted_area_start"

func tagRestrictedAreaStart(a *agent.Agent, start *RestrictedAreaStart) {
	if a.Extra == nil {
		a.Extra = make(map[string]any)
	}
	a.Extra[restrictedAreaExtraKey] = start
}

func restrictedAreaStartOf(a *agent.Agent) (*RestrictedAreaStart, bool) {
	v, ok := a.Extra[restrictedAreaExtraKey]
	if !ok {
		return nil, false
	}
	start, ok := v.(*RestrictedAreaStart)
	return start, ok
}

// RestrictedAreaStart is the entry half of a paired Start/End block
// enforcing a maximum occupancy N inside a bounded region (spec.md §4.4).
// Take requires the agent's previous block to be a Queue.
type RestrictedAreaStart struct {
	Base
	Outputs

	max     int
	inside  int
	waiting []*agent.Agent
}

// NewRestrictedAreaStart constructs a RestrictedAreaStart allowing at most
// max agents inside the region at once.
func NewRestrictedAreaStart(s *sim.Simulator, max int) *RestrictedAreaStart {
	return &RestrictedAreaStart{Base: newBase(s, nil), max: max}
}

// Take requires a's current block to be a Queue, then appends a to the
// waiting list.
func (rs *RestrictedAreaStart) Take(a *agent.Agent) error {
	requireQueueUpstream(a)
	rs.enter(rs, a)
	rs.waiting = append(rs.waiting, a)
	return nil
}

// Tick admits up to max-inside waiting agents, tagging each with a
// back-reference to this Start and incrementing the occupancy count, then
// ejects them downstream.
func (rs *RestrictedAreaStart) Tick() {
	room := rs.max - rs.inside
	if room <= 0 || len(rs.waiting) == 0 {
		return
	}
	if room > len(rs.waiting) {
		room = len(rs.waiting)
	}
	admitted := rs.waiting[:room]
	rs.waiting = rs.waiting[room:]
	for _, a := range admitted {
		tagRestrictedAreaStart(a, rs)
		rs.inside++
		if err := rs.eject(0, a); err != nil {
			panic(err)
		}
	}
}

// HeldAgents returns the agents currently waiting to enter the region.
func (rs *RestrictedAreaStart) HeldAgents() []*agent.Agent { return rs.waiting }

// Inside returns the current occupancy count. The invariant 0 <= Inside()
// <= max holds at every tick boundary.
func (rs *RestrictedAreaStart) Inside() int { return rs.inside }

// String implements console.Inspectable.
func (rs *RestrictedAreaStart) String() string {
	return fmt.Sprintf("restricted_area_start: active=%d/%d waiting=%d", rs.inside, rs.max, len(rs.waiting))
}

// RestrictedAreaEnd is the exit half of the Start/End pair: it reads the
// back-reference tag Start attached, decrements that Start's occupancy,
// clears the tag, and ejects downstream (spec.md §4.4).
type RestrictedAreaEnd struct {
	Base
	Outputs
}

// NewRestrictedAreaEnd constructs a RestrictedAreaEnd. It is not bound to
// a specific Start at construction: it reads whichever Start tagged the
// agent arriving at Take, which is what lets a single Start feed more than
// one exit point in a branching region.
func NewRestrictedAreaEnd(s *sim.Simulator) *RestrictedAreaEnd {
	return &RestrictedAreaEnd{Base: newBase(s, nil)}
}

// Take reads the agent's restricted-area tag, decrements the paired
// Start's occupancy, clears the tag, enters the agent, and ejects it
// downstream. An agent arriving with no tag is a structural misuse.
func (re *RestrictedAreaEnd) Take(a *agent.Agent) error {
	start, ok := restrictedAreaStartOf(a)
	if !ok {
		panic(sim.ErrCapacityViolation)
	}
	start.inside--
	delete(a.Extra, restrictedAreaExtraKey)
	re.enter(re, a)
	return re.eject(0, a)
}

// Tick does nothing: RestrictedAreaEnd never buffers agents.
func (re *RestrictedAreaEnd) Tick() {}

// HeldAgents is always empty.
func (re *RestrictedAreaEnd) HeldAgents() []*agent.Agent { return nil }
