package block

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/resource"
	"github.com/adamantsim/flowsim/sim"
)

// Release reads the agent's acquired-resources tag, releases those
// resources back to their pool, clears the tags, and ejects downstream
// (spec.md §4.5). An agent arriving with no acquired-resources tag is a
// structural misuse — it did not pass through a matching Seize.
type Release struct {
	Base
	Outputs
}

// NewRelease constructs a Release block.
func NewRelease(s *sim.Simulator) *Release {
	return &Release{Base: newBase(s, nil)}
}

// Take releases the agent's tagged resources to their tagged pool,
// clears both tags, and ejects downstream.
func (rl *Release) Take(a *agent.Agent) error {
	acquired, ok := a.Extra[resource.ExtraAcquired].([]*resource.Agent)
	if !ok {
		panic(sim.ErrInvalidArgument)
	}
	pool, ok := a.Extra[resource.ExtraPool].(*resource.Pool)
	if !ok {
		panic(sim.ErrInvalidArgument)
	}
	rl.enter(rl, a)

	pool.Release(acquired)
	delete(a.Extra, resource.ExtraAcquired)
	delete(a.Extra, resource.ExtraPool)

	return rl.eject(0, a)
}

// Tick does nothing: Release never buffers agents.
func (rl *Release) Tick() {}

// HeldAgents is always empty.
func (rl *Release) HeldAgents() []*agent.Agent { return nil }
