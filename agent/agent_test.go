package agent

import "testing"

type fakeBlock struct{ id uint64 }

func (f fakeBlock) ID() uint64 { return f.id }

func TestNewAssignsID(t *testing.T) {
	a := New()
	if a.ID.String() == "" {
		t.Fatal("New() did not assign an ID")
	}
	b := New()
	if a.ID == b.ID {
		t.Fatal("two agents got the same ID")
	}
}

func TestBlockNilUntilEntered(t *testing.T) {
	a := New()
	if a.Block() != nil {
		t.Fatal("a freshly constructed agent should report no current block")
	}
}

func TestEnterBlockUpdatesBlockAndFiresHook(t *testing.T) {
	var gotBlock CurrentBlock
	var gotAgent *Agent
	a := New().WithHooks(Hooks{
		OnEnterBlock: func(a *Agent, block CurrentBlock) {
			gotAgent = a
			gotBlock = block
		},
	})
	b := fakeBlock{id: 7}
	a.EnterBlock(b)

	if a.Block() != b {
		t.Fatalf("Block() = %v, want %v", a.Block(), b)
	}
	if gotAgent != a || gotBlock != b {
		t.Fatal("OnEnterBlock hook did not receive the right agent/block")
	}
}

func TestEnterBlockNilHookIsNoop(t *testing.T) {
	a := New()
	b := fakeBlock{id: 1}
	a.EnterBlock(b) // must not panic with no hooks set
	if a.Block() != b {
		t.Fatal("Block() not updated")
	}
}

func TestEmitAndCollectEmittedEvents(t *testing.T) {
	a := New()
	if got := a.CollectEmittedEvents(); got != nil {
		t.Fatalf("expected nil from an empty staging buffer, got %v", got)
	}

	a.Emit("arrived")
	a.Emit("departed")
	got := a.CollectEmittedEvents()
	want := []string{"arrived", "departed"}
	if len(got) != len(want) {
		t.Fatalf("CollectEmittedEvents() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CollectEmittedEvents()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// The staging buffer is drained: a second collect returns nothing, even
	// though nothing was emitted in between.
	if got := a.CollectEmittedEvents(); got != nil {
		t.Fatalf("expected drained staging buffer, got %v", got)
	}
}

func TestReceiveEventThenProcessPendingEventsFiresOnEventInOrder(t *testing.T) {
	var seen []string
	a := New().WithHooks(Hooks{
		OnEvent: func(a *Agent, tag string) { seen = append(seen, tag) },
	})

	a.ReceiveEvent("one")
	a.ReceiveEvent("two")
	// OnEvent must not fire until ProcessPendingEvents is called.
	if len(seen) != 0 {
		t.Fatalf("OnEvent fired before ProcessPendingEvents: %v", seen)
	}

	a.ProcessPendingEvents()
	want := []string{"one", "two"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen[%d] = %q, want %q", i, seen[i], want[i])
		}
	}

	// Draining is idempotent.
	seen = nil
	a.ProcessPendingEvents()
	if len(seen) != 0 {
		t.Fatalf("ProcessPendingEvents fired OnEvent again on an empty mailbox: %v", seen)
	}
}

func TestProcessPendingEventsNilHookIsNoop(t *testing.T) {
	a := New()
	a.ReceiveEvent("tag")
	a.ProcessPendingEvents() // must not panic with no OnEvent hook
}

func TestAgentIdentityIsByPointer(t *testing.T) {
	a1 := New()
	a2 := New()
	if a1 == a2 {
		t.Fatal("two distinct New() agents compared equal")
	}
	a1Again := a1
	if a1Again != a1 {
		t.Fatal("the same pointer should compare equal to itself")
	}
}
