package block

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
	"github.com/adamantsim/flowsim/spatial"
)

// InitialState computes the registration record a SpatialEntry passes to
// its SpatialManager for a given agent.
type InitialState func(a *agent.Agent) spatial.State

// SpatialEntry registers each taken agent in a named spatial manager and
// holds it until the manager reports movement complete, then ejects it
// downstream (spec.md §4.4). With SingleEntry set, at most one admission
// is accepted per tick — the gate resets at the start of every Tick.
type SpatialEntry struct {
	Base
	Outputs

	space       spatial.SpatialManager
	initial     InitialState
	singleEntry bool
	admitted    bool
	held        []*agent.Agent
}

// NewSpatialEntry constructs a SpatialEntry that registers agents into
// space using initial to compute each one's registration record.
func NewSpatialEntry(s *sim.Simulator, space spatial.SpatialManager, initial InitialState, singleEntry bool) *SpatialEntry {
	return &SpatialEntry{Base: newBase(s, nil), space: space, initial: initial, singleEntry: singleEntry}
}

// Take requires an upstream Queue, enforces the single-entry gate if
// enabled, and registers the agent with the spatial manager. Registration
// failure (NotAdmissible) is returned, not panicked, so the upstream
// Queue can retry the agent on a later tick (spec.md §4.4, §7).
func (se *SpatialEntry) Take(a *agent.Agent) error {
	requireQueueUpstream(a)
	if se.singleEntry && se.admitted {
		return sim.ErrNotAdmissible
	}
	if err := se.space.Register(a, se.initial(a)); err != nil {
		return err
	}
	se.enter(se, a)
	se.held = append(se.held, a)
	if se.singleEntry {
		se.admitted = true
	}
	return nil
}

// Tick resets the single-entry gate, then ejects every held agent whose
// spatial manager reports movement complete.
func (se *SpatialEntry) Tick() {
	se.admitted = false
	if len(se.held) == 0 {
		return
	}
	remaining := se.held[:0]
	for _, a := range se.held {
		if se.space.IsMovementComplete(a) {
			se.space.Unregister(a)
			if err := se.eject(0, a); err != nil {
				panic(err)
			}
		} else {
			remaining = append(remaining, a)
		}
	}
	se.held = remaining
}

// HeldAgents returns the agents currently in transit through the space.
func (se *SpatialEntry) HeldAgents() []*agent.Agent { return se.held }
