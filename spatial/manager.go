// Package spatial implements the SpatialManager contract (spec.md §4.6):
// the animation layer that moves agents geometrically between block
// events. NoCollisionSpace, CollisionSpace, CollisionGridSpace and
// ConveyorSpace are four independent implementations of the same
// interface, trading fidelity for cost the way the teacher's world
// package trades collision-box precision for movement-computer cost
// (server/entity/movement.go).
package spatial

import "github.com/adamantsim/flowsim/agent"

// State is the per-agent spatial record a SpatialManager hands back from
// GetState and mirrors into agent.Agent.SpaceState (spec.md §3). Key
// names are manager-specific but conventionally include "position",
// "target", "speed", "progress" and "path".
type State map[string]any

// SpatialManager is the contract every spatial implementation satisfies
// (spec.md §4.6). It also satisfies sim.Space structurally (Update(float64))
// so any SpatialManager can be registered directly with a Simulator via
// AddSpace without package sim importing package spatial.
type SpatialManager interface {
	// Register validates and admits agent with the given initial state,
	// returning ErrNotAdmissible (or a manager-specific wrap of it) if the
	// state prevents acceptance.
	Register(a *agent.Agent, initial State) error
	// Unregister removes agent's bookkeeping from the manager. It is not
	// an error to unregister an agent that was never registered.
	Unregister(a *agent.Agent) error
	// Update advances every registered agent by deltaTime simulation
	// units (always 1 in the Simulator's tick pipeline; exposed as a
	// parameter so tests can step fractionally).
	Update(deltaTime float64)
	// GetState returns the manager's current authoritative state for
	// agent, and whether it is registered at all.
	GetState(a *agent.Agent) (State, bool)
	// IsMovementComplete reports whether agent has reached its target.
	IsMovementComplete(a *agent.Agent) bool
}

// EntityRegistrar is the optional capability structured spaces (those
// built from a graph of named entities, like ConveyorSpace) expose in
// addition to SpatialManager (spec.md §4.6).
type EntityRegistrar interface {
	RegisterEntity(entity any) error
	IsEntityRegistered(id string) bool
}

func mirror(a *agent.Agent, st State) {
	a.SpaceState = st
}
