package block

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// Split is Combine's inverse: it takes a container agent carrying
// Children, ejects each child to slot 1, clears the container's child
// list, and ejects the now-empty container to slot 0 (spec.md §4.4). A
// container with no children, or either output slot unconnected, is a
// structural misuse.
type Split struct {
	Base
	Outputs
}

// NewSplit constructs a Split block.
func NewSplit(s *sim.Simulator) *Split {
	return &Split{Base: newBase(s, nil)}
}

// Take requires a to carry at least one child; ejects children to slot 1,
// clears a.Children, clears each child's back-link to a, then ejects a to
// slot 0.
func (sp *Split) Take(a *agent.Agent) error {
	if len(a.Children) == 0 {
		panic(sim.ErrInvalidArgument)
	}
	sp.enter(sp, a)

	children := a.Children
	a.Children = nil
	for _, child := range children {
		child.Parents = removeParent(child.Parents, a)
		if err := sp.eject(1, child); err != nil {
			panic(err)
		}
	}
	return sp.eject(0, a)
}

func removeParent(parents []*agent.Agent, target *agent.Agent) []*agent.Agent {
	out := parents[:0]
	for _, p := range parents {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}

// Tick does nothing: Split never buffers agents between take and eject.
func (sp *Split) Tick() {}

// HeldAgents is always empty.
func (sp *Split) HeldAgents() []*agent.Agent { return nil }
