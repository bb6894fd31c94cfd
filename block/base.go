// Package block implements the flow-control primitives agents move
// through: Source, Sink, Queue, If, Switch, Delay, Gate,
// RestrictedAreaStart/End, Combine, Split, Seize, Release, and the
// spatial-entry block (spec.md §4.4). Every primitive embeds Base, which
// supplies the identifier and the enter/eject mechanics shared by all of
// them, matching the shared take/tick/connect/eject contract spec.md §4.4
// opens with.
package block

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// Base is the embeddable core every primitive in this package starts
// from. It is not itself a sim.Block — it has no Take or Tick — it only
// carries what every primitive needs regardless of shape: an identifier
// and the enter hook spec.md's shared take description requires ("records
// agent.current_block = self, invokes on_enter").
type Base struct {
	id  uint64
	sim *sim.Simulator

	onEnter func(a *agent.Agent)
}

func newBase(s *sim.Simulator, onEnter func(a *agent.Agent)) Base {
	return Base{id: s.NextBlockID(), sim: s, onEnter: onEnter}
}

// ID satisfies sim.Block and agent.CurrentBlock.
func (b *Base) ID() uint64 { return b.id }

// Sim returns the simulator this block was registered against.
func (b *Base) Sim() *sim.Simulator { return b.sim }

// enter records self as a's current block and fires the on-enter hook, in
// that order, matching the shared take contract in spec.md §4.4.
func (b *Base) enter(self agent.CurrentBlock, a *agent.Agent) {
	a.EnterBlock(self)
	if b.onEnter != nil {
		b.onEnter(a)
	}
}

// Outputs is an embeddable slot-indexed set of output connections, shared
// by every primitive with fixed, numbered output slots (Source, Queue,
// If, Split, Combine's container slot, ...). Switch uses its own
// key-indexed routing table instead (spec.md §4.4).
type Outputs struct {
	slots []sim.Block
}

// Connect wires slot to target, growing the slot table as needed.
func (o *Outputs) Connect(slot int, target sim.Block) {
	if slot < 0 {
		panic(sim.ErrInvalidArgument)
	}
	if slot >= len(o.slots) {
		grown := make([]sim.Block, slot+1)
		copy(grown, o.slots)
		o.slots = grown
	}
	o.slots[slot] = target
}

// eject pushes a into the block wired at slot, returning ErrMissingRoute
// if the slot was never connected.
func (o *Outputs) eject(slot int, a *agent.Agent) error {
	if slot < 0 || slot >= len(o.slots) || o.slots[slot] == nil {
		return sim.ErrMissingRoute
	}
	return o.slots[slot].Take(a)
}

// connected reports whether slot has a wired target.
func (o *Outputs) connected(slot int) bool {
	return slot >= 0 && slot < len(o.slots) && o.slots[slot] != nil
}

// requireQueueUpstream panics with ErrCapacityViolation unless a's current
// block is a Queue, matching the "upstream Queue required" admission
// contract several primitives share (Gate, RestrictedAreaStart, Combine,
// spatial-entry): those blocks have no bounded-buffer of their own
// and rely on an upstream Queue to absorb overflow, so arriving any other
// way is a structural misuse, not a recoverable condition.
func requireQueueUpstream(a *agent.Agent) {
	if _, ok := a.Block().(*Queue); !ok {
		panic(sim.ErrCapacityViolation)
	}
}
