package block

import (
	"fmt"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// Queue is an unbounded FIFO buffer: take always succeeds, and every tick
// it tries to push every queued agent, in order, to its single downstream
// block (spec.md §4.4).
//
// If a push raises, the agent remains at the head of the queue and every
// agent behind it is left untried this tick, preserving FIFO order — this
// differs from a push-every-remaining-agent strategy some earlier
// prototypes of this engine used; it is the contract spec.md fixes.
type Queue struct {
	Base
	Outputs

	waiting []*agent.Agent
}

// NewQueue constructs an empty Queue.
func NewQueue(s *sim.Simulator) *Queue {
	return &Queue{Base: newBase(s, nil)}
}

// Take always succeeds: the agent enters the queue and is appended to the
// waiting list.
func (q *Queue) Take(a *agent.Agent) error {
	q.enter(q, a)
	q.waiting = append(q.waiting, a)
	return nil
}

// Tick pushes queued agents downstream in FIFO order, halting at the
// first push that fails (the failing agent and everything behind it stay
// queued for the next tick).
func (q *Queue) Tick() {
	if !q.connected(0) || len(q.waiting) == 0 {
		return
	}
	i := 0
	for ; i < len(q.waiting); i++ {
		if err := q.eject(0, q.waiting[i]); err != nil {
			break
		}
	}
	q.waiting = q.waiting[i:]
}

// HeldAgents returns the agents currently buffered in the queue.
func (q *Queue) HeldAgents() []*agent.Agent { return q.waiting }

// Size returns the current number of agents in the queue.
func (q *Queue) Size() int { return len(q.waiting) }

// String implements console.Inspectable.
func (q *Queue) String() string { return fmt.Sprintf("queue: size=%d", q.Size()) }
