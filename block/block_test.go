package block

import (
	"testing"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// recordingBlock is a minimal sim.Block that records every agent handed to
// Take, for use as a terminal destination in tests that only care what
// reached the end of a wiring chain.
type recordingBlock struct {
	id       uint64
	received []*agent.Agent
	reject   error
}

func newRecordingBlock(s *sim.Simulator) *recordingBlock {
	return &recordingBlock{id: s.NextBlockID()}
}

func (r *recordingBlock) ID() uint64 { return r.id }
func (r *recordingBlock) Take(a *agent.Agent) error {
	if r.reject != nil {
		return r.reject
	}
	r.received = append(r.received, a)
	return nil
}
func (r *recordingBlock) Tick()                      {}
func (r *recordingBlock) HeldAgents() []*agent.Agent { return nil }

func newTestSim(t *testing.T) *sim.Simulator {
	t.Helper()
	return sim.Config{MaxTicks: 100, Seed: 1}.New()
}
