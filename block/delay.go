package block

import (
	"fmt"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// Delay holds each agent for a fixed number of ticks before ejecting it
// downstream, via a one-shot entry on the simulator's TimedScheduler
// (spec.md §4.4).
//
// A delay of zero ticks ejects the agent within the same tick it was
// taken: the timed event is scheduled for current_tick+0, and the
// scheduler re-fires current_tick after the block pass so an event landing
// in an already-fired bucket still runs this tick instead of being
// stranded.
type Delay struct {
	Base
	Outputs

	delayTicks int64
	// held maps a held agent to the tick its ejection is scheduled for.
	held map[*agent.Agent]int64
}

// NewDelay constructs a Delay that holds every taken agent for delayTicks
// ticks. A negative delayTicks is clamped to zero.
func NewDelay(s *sim.Simulator, delayTicks int64) *Delay {
	if delayTicks < 0 {
		delayTicks = 0
	}
	return &Delay{Base: newBase(s, nil), delayTicks: delayTicks, held: make(map[*agent.Agent]int64)}
}

// Take always succeeds: the agent enters the block and a one-shot
// timed event is armed to eject it delayTicks ticks from now.
func (d *Delay) Take(a *agent.Agent) error {
	d.enter(d, a)
	fireTick := d.Sim().CurrentTick() + d.delayTicks
	d.held[a] = fireTick
	d.Sim().ScheduleEvent(func(tick int64) {
		delete(d.held, a)
		if err := d.eject(0, a); err != nil {
			panic(err)
		}
	}, d.delayTicks, false)
	return nil
}

// Tick does nothing: ejection is driven entirely by the scheduled timed
// event, not by the per-tick pass.
func (d *Delay) Tick() {}

// HeldAgents returns the agents currently waiting out their delay.
func (d *Delay) HeldAgents() []*agent.Agent {
	out := make([]*agent.Agent, 0, len(d.held))
	for a := range d.held {
		out = append(out, a)
	}
	return out
}

// PendingCount returns the number of agents currently held.
func (d *Delay) PendingCount() int { return len(d.held) }

// FireTick returns the tick a's ejection is scheduled for, and whether a
// is currently held at all.
func (d *Delay) FireTick(a *agent.Agent) (int64, bool) {
	tick, ok := d.held[a]
	return tick, ok
}

// String implements console.Inspectable.
func (d *Delay) String() string { return fmt.Sprintf("delay: size=%d", d.PendingCount()) }
