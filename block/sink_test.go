package block

import (
	"testing"

	"github.com/adamantsim/flowsim/agent"
)

func TestSinkAbsorbsAgentAndRemovesFromRegistry(t *testing.T) {
	s := newTestSim(t)
	sk := NewSink(s)
	a := agent.New()
	s.AddAgent(a)

	if err := sk.Take(a); err != nil {
		t.Fatalf("Take: %v", err)
	}
	if sk.Count != 1 {
		t.Fatalf("Count = %d, want 1", sk.Count)
	}
	if a.Block() != sk {
		t.Fatal("agent's current block was not set to the Sink")
	}

	// A second agent confirms Count accumulates across takes.
	b := agent.New()
	sk.Take(b)
	if sk.Count != 2 {
		t.Fatalf("Count = %d, want 2", sk.Count)
	}
}

func TestSinkStringReportsCount(t *testing.T) {
	s := newTestSim(t)
	sk := NewSink(s)
	sk.Take(agent.New())
	sk.Take(agent.New())
	want := "sink: count=2"
	if got := sk.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestSinkHeldAgentsIsAlwaysEmpty(t *testing.T) {
	s := newTestSim(t)
	sk := NewSink(s)
	sk.Take(agent.New())
	if held := sk.HeldAgents(); held != nil {
		t.Fatalf("HeldAgents() = %v, want nil", held)
	}
}
