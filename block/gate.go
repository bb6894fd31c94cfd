package block

import (
	"fmt"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// GateState is the open/closed state of a Gate.
type GateState int

const (
	GateClosed GateState = iota
	GateOpen
)

// GateMode controls how many waiting agents a Gate releases per tick
// while open.
type GateMode int

const (
	// GateModeOne releases only the head of the waiting list per tick.
	GateModeOne GateMode = iota
	// GateModeAll releases the entire waiting list per tick.
	GateModeAll
)

// Gate holds agents until opened, then releases them one at a time or all
// at once depending on Mode (spec.md §4.4). Take requires the agent's
// previous block to be a Queue.
type Gate struct {
	Base
	Outputs

	mode    GateMode
	state   GateState
	waiting []*agent.Agent
}

// NewGate constructs a closed Gate in the given mode.
func NewGate(s *sim.Simulator, mode GateMode) *Gate {
	return &Gate{Base: newBase(s, nil), mode: mode, state: GateClosed}
}

// Take requires a's current block to be a Queue — panicking with
// ErrCapacityViolation otherwise — then appends a to the waiting list.
func (g *Gate) Take(a *agent.Agent) error {
	requireQueueUpstream(a)
	g.enter(g, a)
	g.waiting = append(g.waiting, a)
	return nil
}

// Tick releases waiting agents when the gate is open: GateModeOne ejects
// only the head, GateModeAll ejects every waiting agent.
func (g *Gate) Tick() {
	if g.state != GateOpen || len(g.waiting) == 0 {
		return
	}
	switch g.mode {
	case GateModeOne:
		a := g.waiting[0]
		g.waiting = g.waiting[1:]
		if err := g.eject(0, a); err != nil {
			panic(err)
		}
	case GateModeAll:
		pending := g.waiting
		g.waiting = nil
		for _, a := range pending {
			if err := g.eject(0, a); err != nil {
				panic(err)
			}
		}
	}
}

// HeldAgents returns the agents currently waiting at the gate.
func (g *Gate) HeldAgents() []*agent.Agent { return g.waiting }

// Open opens the gate.
func (g *Gate) Open() { g.state = GateOpen }

// Close closes the gate.
func (g *Gate) Close() { g.state = GateClosed }

// Toggle flips the gate's open/closed state.
func (g *Gate) Toggle() {
	if g.state == GateOpen {
		g.state = GateClosed
	} else {
		g.state = GateOpen
	}
}

// State returns the gate's current open/closed state.
func (g *Gate) State() GateState { return g.state }

func (gs GateState) String() string {
	if gs == GateOpen {
		return "open"
	}
	return "closed"
}

// String implements console.Inspectable.
func (g *Gate) String() string {
	return fmt.Sprintf("gate: state=%s waiting=%d", g.state, len(g.waiting))
}
