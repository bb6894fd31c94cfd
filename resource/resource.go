// Package resource implements the discrete capacity-reservation subsystem
// described in spec.md §4.5: a ResourcePool of ResourceAgents that Seize
// and Release blocks in package block acquire and give back.
package resource

import (
	"fmt"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// Extension keys SeizeBlock/ReleaseBlock stash on an agent's Extra map
// (spec.md §9: "Strategy: sum-type with per-subsystem tagged payload... a
// typed extension map keyed by subsystem identifier"). ExtraAcquired
// holds the []*Agent seized; ExtraPool holds the *Pool they came from.
const (
	ExtraAcquired = "resource.acquired_resources"
	ExtraPool     = "resource.pool"
)

// Agent is a ResourceAgent (spec.md §3): a resource that can be seized or
// released, belonging to exactly one Pool at a time. It embeds *agent.Agent
// so resources can be added to a Simulator's global registry and — like
// any other agent — subscribe to and emit events.
type Agent struct {
	*agent.Agent

	// ResourceID is the resource's stable identifier, distinct from the
	// embedded agent.Agent.ID (which is assigned automatically).
	ResourceID string
	// Type tags the resource's kind (e.g. "forklift", "operator").
	Type string
	// Properties carries arbitrary user-defined resource metadata.
	Properties map[string]any

	// IsAvailable is the resource's availability flag. A resource is
	// always in exactly one of its pool's two lists (spec.md §3
	// invariant), but the flag is not kept in step by Pool.Seize: it is
	// cleared by the Seize block when it tags the resource, and set again
	// by Pool.Release. A resource taken with Pool.Seize directly stays
	// IsAvailable == true while it sits in the occupied-list.
	IsAvailable bool
	// OccupiedBy is the agent currently holding the resource, or nil.
	OccupiedBy *agent.Agent
	// OccupiedSinceTick records when OccupiedBy took the resource.
	OccupiedSinceTick int64
}

// NewAgent constructs an available, unoccupied resource.
func NewAgent(resourceID, resourceType string, properties map[string]any) *Agent {
	return &Agent{
		Agent:       agent.New(),
		ResourceID:  resourceID,
		Type:        resourceType,
		Properties:  properties,
		IsAvailable: true,
	}
}

// Hooks are optional pool lifecycle callbacks (spec.md §4.5).
type Hooks struct {
	// OnAcquire fires when a resource is moved from available to occupied
	// by Seize, before the caller tags it.
	OnAcquire func(r *Agent)
	// OnRelease fires when a resource is moved from occupied back to
	// available by Release, before its fields are cleared.
	OnRelease func(r *Agent)
	// OnOccupy fires once Seize has tagged the resource with its new
	// occupant.
	OnOccupy func(r *Agent, occupant *agent.Agent)
	// OnFree fires once Release has cleared the resource's occupant
	// fields.
	OnFree func(r *Agent)
}

// Pool manages resources of a single type: an available-list and an
// occupied-list of Agent (spec.md §4.5).
type Pool struct {
	Name         string
	ResourceType string
	hooks        Hooks
	sim          *sim.Simulator

	available []*Agent
	occupied  []*Agent
}

// NewPool constructs a Pool and adds any initial resources to both the
// pool and the simulator's global agent registry, matching
// ResourcePool.__init__'s behaviour of registering seed resources as
// agents up front.
func NewPool(s *sim.Simulator, name, resourceType string, initial []*Agent, hooks Hooks) *Pool {
	p := &Pool{Name: name, ResourceType: resourceType, hooks: hooks, sim: s}
	for _, r := range initial {
		p.AddResource(r)
	}
	return p
}

// AddResource adds r to the pool's available or occupied list (per its
// current IsAvailable flag) and registers it with the simulator.
func (p *Pool) AddResource(r *Agent) {
	if r.IsAvailable {
		p.available = append(p.available, r)
	} else {
		p.occupied = append(p.occupied, r)
	}
	if p.sim != nil {
		p.sim.AddAgent(r.Agent)
	}
}

// Seize attempts to reserve count resources atomically: either all count
// are returned, or — if fewer than count are available — nil is returned
// and the pool is left untouched (spec.md §4.5).
func (p *Pool) Seize(count int) []*Agent {
	if count <= 0 || len(p.available) < count {
		return nil
	}
	selected := p.available[:count]
	p.available = append([]*Agent(nil), p.available[count:]...)

	seized := make([]*Agent, 0, count)
	for _, r := range selected {
		p.occupied = append(p.occupied, r)
		if p.hooks.OnAcquire != nil {
			p.hooks.OnAcquire(r)
		}
		seized = append(seized, r)
	}
	return seized
}

// Release moves every resource in resources that is currently occupied
// back to available, clearing its occupant fields, and returns how many
// were actually released (resources already available are skipped).
func (p *Pool) Release(resources []*Agent) int {
	released := 0
	for _, r := range resources {
		idx := indexOf(p.occupied, r)
		if idx < 0 {
			continue
		}
		if p.hooks.OnRelease != nil {
			p.hooks.OnRelease(r)
		}
		r.IsAvailable = true
		r.OccupiedBy = nil
		r.OccupiedSinceTick = 0

		p.occupied[idx] = p.occupied[len(p.occupied)-1]
		p.occupied = p.occupied[:len(p.occupied)-1]
		p.available = append(p.available, r)
		released++

		if p.hooks.OnFree != nil {
			p.hooks.OnFree(r)
		}
	}
	return released
}

// AvailableCount returns the number of resources currently available.
func (p *Pool) AvailableCount() int { return len(p.available) }

// OccupiedCount returns the number of resources currently occupied.
func (p *Pool) OccupiedCount() int { return len(p.occupied) }

// String implements console.Inspectable.
func (p *Pool) String() string {
	return fmt.Sprintf("pool[%s]: available=%d occupied=%d", p.Name, p.AvailableCount(), p.OccupiedCount())
}

func indexOf(rs []*Agent, target *Agent) int {
	for i, r := range rs {
		if r == target {
			return i
		}
	}
	return -1
}
