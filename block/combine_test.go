package block

import (
	"errors"
	"testing"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

func TestCombineTakeRequiresQueueUpstream(t *testing.T) {
	s := newTestSim(t)
	cb := NewCombine(s, 1)

	defer func() {
		r := recover()
		if !errors.Is(toErr(r), sim.ErrCapacityViolation) {
			t.Fatalf("recovered %v, want ErrCapacityViolation", r)
		}
	}()
	cb.Take(agent.New())
}

func TestCombineTakeReturnsNotAdmissibleOnSecondContainer(t *testing.T) {
	s := newTestSim(t)
	q := NewQueue(s)
	cb := NewCombine(s, 1)

	c1, c2 := agent.New(), agent.New()
	q.Take(c1)
	cb.Take(c1)
	q.Take(c2)

	err := cb.Take(c2)
	if !errors.Is(err, sim.ErrNotAdmissible) {
		t.Fatalf("Take(c2) = %v, want ErrNotAdmissible", err)
	}
	if cb.container != c1 {
		t.Fatal("the held container must not change on a rejected overflow")
	}
}

func TestCombineAttachesPickupsArrivingAfterContainer(t *testing.T) {
	s := newTestSim(t)
	q := NewQueue(s)
	cb := NewCombine(s, 2)
	dst := newRecordingBlock(s)
	cb.Connect(0, dst)

	container := agent.New()
	q.Take(container)
	cb.Take(container)

	p1, p2 := agent.New(), agent.New()
	q.Take(p1)
	if err := cb.PickupPort().Take(p1); err != nil {
		t.Fatalf("pickup 1: %v", err)
	}
	if len(dst.received) != 0 {
		t.Fatal("container should not eject before reaching maxPickups")
	}
	q.Take(p2)
	if err := cb.PickupPort().Take(p2); err != nil {
		t.Fatalf("pickup 2: %v", err)
	}

	if len(dst.received) != 1 || dst.received[0] != container {
		t.Fatalf("dst.received = %v, want [container] once maxPickups is reached", dst.received)
	}
	if len(container.Children) != 2 {
		t.Fatalf("container.Children = %v, want 2 pickups attached", container.Children)
	}
	if p1.Parents[0] != container || p2.Parents[0] != container {
		t.Fatal("pickups should have the container as a parent")
	}
}

func TestCombineQueuesPickupsArrivingBeforeContainerAndDrainsOnContainerArrival(t *testing.T) {
	s := newTestSim(t)
	q := NewQueue(s)
	cb := NewCombine(s, 1)
	dst := newRecordingBlock(s)
	cb.Connect(0, dst)

	p1 := agent.New()
	q.Take(p1)
	if err := cb.PickupPort().Take(p1); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if len(cb.HeldAgents()) != 1 {
		t.Fatalf("HeldAgents() = %v, want the queued pickup held", cb.HeldAgents())
	}

	container := agent.New()
	q.Take(container)
	if err := cb.Take(container); err != nil {
		t.Fatalf("Take(container): %v", err)
	}

	if len(dst.received) != 1 || dst.received[0] != container {
		t.Fatalf("dst.received = %v, want the container ejected once drained", dst.received)
	}
}

func TestCombinePickupReturnsNotAdmissibleWhenQueueFull(t *testing.T) {
	s := newTestSim(t)
	q := NewQueue(s)
	cb := NewCombine(s, 1)

	p1, p2 := agent.New(), agent.New()
	q.Take(p1)
	if err := cb.PickupPort().Take(p1); err != nil {
		t.Fatalf("pickup 1: %v", err)
	}
	q.Take(p2)

	err := cb.PickupPort().Take(p2)
	if !errors.Is(err, sim.ErrNotAdmissible) {
		t.Fatalf("Take(p2) = %v, want ErrNotAdmissible", err)
	}
	if len(cb.pickups) != 1 || cb.pickups[0] != p1 {
		t.Fatal("the waiting pickup list must not change on a rejected overflow")
	}
}

// TestCombineContainerOverflowIsRetriedByUpstreamQueue exercises the real
// Queue-mediated pipeline: a second container arrives while one is already
// held, is rejected and stays queued, and is admitted on a later tick once
// the held container drains and ejects.
func TestCombineContainerOverflowIsRetriedByUpstreamQueue(t *testing.T) {
	s := newTestSim(t)
	q := NewQueue(s)
	cb := NewCombine(s, 1)
	q.Connect(0, cb)
	dst := newRecordingBlock(s)
	cb.Connect(0, dst)

	pickupQ := NewQueue(s)
	pickupQ.Connect(0, cb.PickupPort())

	c1, c2 := agent.New(), agent.New()
	q.Take(c1)
	q.Tick()
	if cb.container != c1 {
		t.Fatalf("cb.container = %v, want c1 admitted", cb.container)
	}

	q.Take(c2)
	q.Tick()
	if q.Size() != 1 || q.HeldAgents()[0] != c2 {
		t.Fatalf("q.HeldAgents() = %v, want c2 still queued after overflow", q.HeldAgents())
	}
	if cb.container != c1 {
		t.Fatal("the held container must not change while overflow is rejected")
	}

	// Freeing the container slot: attaching the one pickup maxPickups
	// needs ejects c1 downstream and clears the slot.
	p1 := agent.New()
	pickupQ.Take(p1)
	pickupQ.Tick()
	if len(dst.received) != 1 || dst.received[0] != c1 {
		t.Fatalf("dst.received = %v, want c1 ejected once drained", dst.received)
	}
	if cb.container != nil {
		t.Fatal("container slot must be clear after c1 ejects")
	}

	q.Tick()
	if q.Size() != 0 {
		t.Fatalf("q.HeldAgents() = %v, want c2 admitted once capacity freed", q.HeldAgents())
	}
	if cb.container != c2 {
		t.Fatalf("cb.container = %v, want c2 admitted on retry", cb.container)
	}
}

// TestCombinePickupOverflowIsRetriedByUpstreamQueue mirrors the container
// case on the pickup port: a pickup arriving when the waiting list is full
// is rejected and stays queued, then is admitted once a container arrives
// and drains the list.
func TestCombinePickupOverflowIsRetriedByUpstreamQueue(t *testing.T) {
	s := newTestSim(t)
	pickupQ := NewQueue(s)
	cb := NewCombine(s, 1)
	pickupQ.Connect(0, cb.PickupPort())
	dst := newRecordingBlock(s)
	cb.Connect(0, dst)

	containerQ := NewQueue(s)
	containerQ.Connect(0, cb)

	p1, p2 := agent.New(), agent.New()
	pickupQ.Take(p1)
	pickupQ.Tick()
	if len(cb.pickups) != 1 || cb.pickups[0] != p1 {
		t.Fatalf("cb.pickups = %v, want p1 admitted", cb.pickups)
	}

	pickupQ.Take(p2)
	pickupQ.Tick()
	if pickupQ.Size() != 1 || pickupQ.HeldAgents()[0] != p2 {
		t.Fatalf("pickupQ.HeldAgents() = %v, want p2 still queued after overflow", pickupQ.HeldAgents())
	}

	// Admitting a container with maxPickups=1 immediately drains p1 and
	// ejects the container, clearing the waiting list.
	container := agent.New()
	containerQ.Take(container)
	containerQ.Tick()
	if len(dst.received) != 1 || dst.received[0] != container {
		t.Fatalf("dst.received = %v, want the container ejected once drained", dst.received)
	}
	if len(cb.pickups) != 0 {
		t.Fatalf("cb.pickups = %v, want the waiting list emptied by the drain", cb.pickups)
	}

	pickupQ.Tick()
	if pickupQ.Size() != 0 {
		t.Fatalf("pickupQ.HeldAgents() = %v, want p2 admitted once capacity freed", pickupQ.HeldAgents())
	}
	if len(cb.pickups) != 1 || cb.pickups[0] != p2 {
		t.Fatalf("cb.pickups = %v, want p2 admitted on retry", cb.pickups)
	}
}
