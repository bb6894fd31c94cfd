package block

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// SpawnSchedule decides, for a given tick, how many new agents a Source
// should instantiate this tick (spec.md §4.4).
type SpawnSchedule func(tick int64) int

// Factory creates one freshly spawned agent, given the tick it was
// spawned on.
type Factory func(tick int64) *agent.Agent

// Source never accepts incoming agents: it manufactures them itself, on a
// schedule, and pushes each to its single output slot (spec.md §4.4).
type Source struct {
	Base
	Outputs

	schedule SpawnSchedule
	factory  Factory

	// Spawned is the lifetime count of agents this Source has created.
	Spawned int64
}

// NewSource constructs a Source. schedule and factory must both be
// non-nil; a Source with no work to do should use a schedule that always
// returns zero rather than a nil schedule.
func NewSource(s *sim.Simulator, schedule SpawnSchedule, factory Factory) *Source {
	return &Source{Base: newBase(s, nil), schedule: schedule, factory: factory}
}

// Take always fails: a Source has no admission path (spec.md §4.4, "never
// accepts incoming agents").
func (src *Source) Take(a *agent.Agent) error {
	return sim.ErrNotAdmissible
}

// Tick evaluates the spawn schedule for the current tick, instantiates
// that many agents, enters each into this Source, and ejects it to
// output slot 0.
func (src *Source) Tick() {
	tick := src.Sim().CurrentTick()
	count := src.schedule(tick)
	for i := 0; i < count; i++ {
		a := src.factory(tick)
		src.enter(src, a)
		src.Spawned++
		if err := src.eject(0, a); err != nil {
			panic(err)
		}
	}
}

// HeldAgents is always empty: Source buffers nothing between take and
// eject.
func (src *Source) HeldAgents() []*agent.Agent { return nil }
