package block

import (
	"fmt"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// Sink accepts any agent, holds it forever, and removes it from the
// simulator's global registry (spec.md §4.4). Count is the lifetime
// acceptance total.
type Sink struct {
	Base

	Count int64
}

// NewSink constructs a Sink.
func NewSink(s *sim.Simulator) *Sink {
	return &Sink{Base: newBase(s, nil)}
}

// Take always succeeds: it enters the agent, removes it from the global
// registry, and increments Count.
func (sk *Sink) Take(a *agent.Agent) error {
	sk.enter(sk, a)
	sk.Sim().RemoveAgent(a)
	sk.Count++
	return nil
}

// Tick does nothing: a Sink has no per-tick behaviour of its own.
func (sk *Sink) Tick() {}

// HeldAgents is always empty: agents absorbed by a Sink are removed from
// the simulation outright, not held in an inspectable buffer.
func (sk *Sink) HeldAgents() []*agent.Agent { return nil }

// String implements console.Inspectable.
func (sk *Sink) String() string { return fmt.Sprintf("sink: count=%d", sk.Count) }
