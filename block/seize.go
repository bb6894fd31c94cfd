package block

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/resource"
	"github.com/adamantsim/flowsim/sim"
)

// workLocationKey is the agent.Extra key SeizeBlock checks for to decide
// whether a seizure models a one-tick move of resources to a task site
// (spec.md §4.5). The value itself is never inspected — only its
// presence matters.
const workLocationKey = "block.work_location"

// Seize reserves Count resources from Pool per taken agent, tagging both
// the resources and the agent, then either ejects immediately or holds
// the agent for one tick if it carries a work-location marker (spec.md
// §4.5). Insufficient availability is NotAdmissible — propagated up to an
// upstream Queue, which is required.
type Seize struct {
	Base
	Outputs

	pool  *resource.Pool
	count int
}

// NewSeize constructs a Seize block drawing count resources per agent
// from pool.
func NewSeize(s *sim.Simulator, pool *resource.Pool, count int) *Seize {
	return &Seize{Base: newBase(s, nil), pool: pool, count: count}
}

// Take attempts to seize Count resources from Pool. Insufficient
// availability returns ErrNotAdmissible without mutating the pool (Pool.Seize
// itself is all-or-nothing). On success, every seized resource is tagged
// occupied and the agent is tagged with the acquired set; an agent
// carrying workLocationKey is held via a one-tick timed event (modeling
// the resources' travel time to the task site) instead of ejected inline.
func (sz *Seize) Take(a *agent.Agent) error {
	seized := sz.pool.Seize(sz.count)
	if seized == nil {
		return sim.ErrNotAdmissible
	}
	sz.enter(sz, a)

	tick := sz.Sim().CurrentTick()
	for _, r := range seized {
		r.IsAvailable = false
		r.OccupiedBy = a
		r.OccupiedSinceTick = tick
	}
	if a.Extra == nil {
		a.Extra = make(map[string]any)
	}
	a.Extra[resource.ExtraAcquired] = seized
	a.Extra[resource.ExtraPool] = sz.pool

	if _, hasWorkLocation := a.Extra[workLocationKey]; hasWorkLocation {
		sz.Sim().ScheduleEvent(func(int64) {
			if err := sz.eject(0, a); err != nil {
				panic(err)
			}
		}, 1, false)
		return nil
	}
	return sz.eject(0, a)
}

// Tick does nothing: ejection is driven by Take (immediate) or a
// scheduled timed event (one-tick hold), never by the per-tick pass.
func (sz *Seize) Tick() {}

// HeldAgents is always empty: Seize never buffers agents in an
// inspectable list, even during the one-tick hold (the held agent is
// tracked by the scheduler, not this block).
func (sz *Seize) HeldAgents() []*agent.Agent { return nil }
