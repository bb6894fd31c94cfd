package block

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// Predicate decides which of If's two output slots an agent takes: true
// routes to slot 0, false to slot 1.
type Predicate func(a *agent.Agent) bool

// If has two named output slots (true/false). Take buffers the agent;
// Tick drains the buffer, routing each agent by Predicate (spec.md §4.4).
type If struct {
	Base
	Outputs

	predicate Predicate
	buffered  []*agent.Agent
}

// NewIf constructs an If block. Slot 0 is the true branch, slot 1 the
// false branch.
func NewIf(s *sim.Simulator, predicate Predicate) *If {
	return &If{Base: newBase(s, nil), predicate: predicate}
}

// Take always succeeds: the agent enters the block and is buffered for
// evaluation on the next Tick.
func (ib *If) Take(a *agent.Agent) error {
	ib.enter(ib, a)
	ib.buffered = append(ib.buffered, a)
	return nil
}

// Tick evaluates the predicate for every buffered agent and routes it to
// slot 0 (true) or slot 1 (false).
func (ib *If) Tick() {
	if len(ib.buffered) == 0 {
		return
	}
	pending := ib.buffered
	ib.buffered = nil
	for _, a := range pending {
		slot := 1
		if ib.predicate(a) {
			slot = 0
		}
		if err := ib.eject(slot, a); err != nil {
			panic(err)
		}
	}
}

// HeldAgents returns the agents awaiting evaluation this tick.
func (ib *If) HeldAgents() []*agent.Agent { return ib.buffered }
