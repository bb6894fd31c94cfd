package sim

import "github.com/adamantsim/flowsim/agent"

// Block is the minimal surface the Simulator needs to drive the block
// graph's tick pipeline (spec.md §4.4). Concrete primitives in package
// block implement this, plus whatever connect/inspection methods their own
// contract calls for (Connect, State, Size, ...) — those are not part of
// this interface because they differ per primitive (slot-indexed for
// Queue/If, key-indexed for Switch).
type Block interface {
	// ID returns the identifier the block obtained from its Simulator's
	// NextBlockID at construction.
	ID() uint64

	// Take admits agent into the block. Implementations that cannot
	// accept (wrong upstream, full capacity, ...) return one of the
	// sentinel errors in errors.go; callers are expected to have an
	// upstream Queue to absorb the failure.
	Take(a *agent.Agent) error

	// Tick runs the block's per-tick logic. Called once per simulation
	// tick, in block registration order.
	Tick()

	// HeldAgents returns the agents currently buffered inside the block
	// (not yet ejected downstream). Used by the Simulator's end-of-tick
	// event collection pass, which must see agents that only exist inside
	// a block's internal buffer this tick.
	HeldAgents() []*agent.Agent
}

// Space is the subset of the SpatialManager contract (spec.md §4.6) that
// the Simulator's tick pipeline needs directly: advancing it once per tick.
// The richer registration/query contract lives in package spatial as
// spatial.SpatialManager; blocks that need it type-assert the Space
// returned by GetSpace.
type Space interface {
	Update(deltaTime float64)
}

// ViewHook is fired once at the very end of every tick, after event
// collection, as an external observation point (spec.md §4.1 step 5, §6).
// It has no bearing on simulation state — it exists purely so a renderer
// or logger can react to a completed tick.
type ViewHook interface {
	RenderTick(currentTick int64)
}

// ViewHookFunc adapts a plain function to ViewHook.
type ViewHookFunc func(currentTick int64)

// RenderTick calls f.
func (f ViewHookFunc) RenderTick(currentTick int64) { f(currentTick) }
