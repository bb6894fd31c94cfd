// Package sim implements the simulation core: the Simulator tick pipeline,
// the TimedScheduler, and the EventBus (spec.md §4.1–§4.3). It defines the
// Block and Space interfaces that package block and package spatial
// implement, but does not import either — they depend on sim, not the
// reverse.
package sim

import (
	"log/slog"
	"math/rand/v2"

	"github.com/adamantsim/flowsim/agent"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Simulator is the central tick-driven controller described in spec.md
// §4.1. It owns the block graph, the global agent registry, the timed
// scheduler, the event bus and the named spatial managers, and advances
// them together in a fixed, non-configurable order every tick.
//
// Simulator is not safe for concurrent use: the engine's scheduling model
// is single-threaded cooperative (spec.md §5) and Simulator carries no
// internal locking.
type Simulator struct {
	maxTicks    int64
	currentTick int64

	blocks      []Block
	lastBlockID uint64

	agents   []*agent.Agent
	agentIdx map[*agent.Agent]int

	bus       *EventBus
	scheduler *TimedScheduler
	rng       *rand.Rand

	spaces   map[string]Space
	spaceOrd []string

	pending map[*agent.Agent]struct{}

	view ViewHook
	log  *slog.Logger
}

// AddBlock registers b for per-tick invocation, in the order AddBlock was
// called (spec.md §4.1 step 4: "Tick every block in registration order").
func (s *Simulator) AddBlock(b Block) {
	s.blocks = append(s.blocks, b)
}

// NextBlockID returns a fresh, simulator-scoped identifier. Block
// constructors in package block call this once, at construction, to
// satisfy the Block.ID contract.
func (s *Simulator) NextBlockID() uint64 {
	s.lastBlockID++
	return s.lastBlockID
}

// AddAgent adds agent to the simulator's global registry — used for
// pre-seeded agents injected directly rather than spawned by a Source
// (spec.md §4.1 "add_agent(a)").
func (s *Simulator) AddAgent(a *agent.Agent) {
	if _, ok := s.agentIdx[a]; ok {
		return
	}
	s.agentIdx[a] = len(s.agents)
	s.agents = append(s.agents, a)
}

// RemoveAgent removes agent from the global registry — called by a
// terminal block (e.g. Sink) when it absorbs the agent for good.
func (s *Simulator) RemoveAgent(a *agent.Agent) {
	idx, ok := s.agentIdx[a]
	if !ok {
		return
	}
	last := len(s.agents) - 1
	s.agents[idx] = s.agents[last]
	s.agentIdx[s.agents[idx]] = idx
	s.agents = s.agents[:last]
	delete(s.agentIdx, a)
}

// Subscribe registers agent to receive tag, delivered one tick after it is
// emitted (spec.md §4.3).
func (s *Simulator) Subscribe(a *agent.Agent, tag string) {
	s.bus.Subscribe(a, tag)
}

// Unsubscribe removes a previously registered subscription.
func (s *Simulator) Unsubscribe(a *agent.Agent, tag string) {
	s.bus.Unsubscribe(a, tag)
}

// ScheduleEvent arms callback to run after delay ticks, optionally
// re-arming itself (spec.md §4.2). Calling this while the scheduler is
// firing the current tick's due events panics with ErrSchedulingLocked.
func (s *Simulator) ScheduleEvent(callback func(tick int64), delay int64, recurring bool) {
	s.scheduler.Schedule(callback, delay, recurring)
}

// AddSpace registers a named spatial manager, stepped every tick in
// registration order alongside every other space (spec.md §4.1 step 2).
func (s *Simulator) AddSpace(name string, space Space) {
	if _, exists := s.spaces[name]; !exists {
		s.spaceOrd = append(s.spaceOrd, name)
	}
	s.spaces[name] = space
}

// GetSpace returns the space registered under name, if any.
func (s *Simulator) GetSpace(name string) (Space, bool) {
	sp, ok := s.spaces[name]
	return sp, ok
}

// CurrentTick returns the tick currently executing, or about to execute if
// called outside of Tick/Run.
func (s *Simulator) CurrentTick() int64 { return s.currentTick }

// Rand returns the simulator's seeded PRNG stream. It is shared with the
// TimedScheduler's same-tick tie-breaking, and is the only source of
// randomness user code (stochastic spawn schedules, random predicates)
// should use if it wants deterministic reruns under a fixed seed (spec.md
// §5, §9).
func (s *Simulator) Rand() *rand.Rand { return s.rng }

// Logger returns the simulator's structured logger.
func (s *Simulator) Logger() *slog.Logger { return s.log }

// Stop arranges for Run to exit after the current tick completes (spec.md
// §4.1: "stop sets max_ticks = 0").
func (s *Simulator) Stop() {
	s.maxTicks = 0
}

// Run advances current_tick from 0 while current_tick < max_ticks,
// invoking Tick once per iteration.
func (s *Simulator) Run() {
	for s.currentTick < s.maxTicks {
		s.Step()
	}
}

// Step runs one tick's pipeline and advances current_tick by one,
// regardless of max_ticks. It is what Run calls internally; callers
// driving the simulator by hand (an interactive console, a test stepping
// tick-dependent logic) should call Step rather than Tick so that
// CurrentTick reflects each step — Tick alone never advances it.
func (s *Simulator) Step() {
	s.Tick()
	s.currentTick++
}

// Tick executes exactly one simulation tick, in the fixed five-step order
// mandated by spec.md §4.1. The order is deliberate and not configurable:
//
//  1. Fire timed events due this tick.
//  2. Step every spatial manager by delta_time = 1.
//  3. Deliver agent events staged during the previous tick's collection.
//  4. Tick every block, in registration order.
//  5. Collect newly emitted events and stage them for next tick's step 3;
//     fire the view hook last.
//
// A block, timed-event callback, or view hook that panics aborts the tick;
// the panic propagates to Tick's caller unmodified.
func (s *Simulator) Tick() {
	s.scheduler.fire(s.currentTick, s.rng)

	for _, name := range s.spaceOrd {
		s.spaces[name].Update(1)
	}

	s.deliverPendingEvents()

	for _, b := range s.blocks {
		b.Tick()
	}

	// A block's Tick can itself schedule a zero-delay event (Delay with
	// delay_ticks=0): that lands in the bucket for current_tick, which the
	// step-1 fire above already popped. Fire current_tick again so such
	// events still go off this tick instead of being stranded in a bucket
	// no future fire call will ever revisit. This is a no-op whenever
	// nothing scheduled into the already-fired bucket.
	s.scheduler.fire(s.currentTick, s.rng)

	s.collectEmittedEvents()

	if s.view != nil {
		s.view.RenderTick(s.currentTick)
	}
}

func (s *Simulator) deliverPendingEvents() {
	if len(s.pending) == 0 {
		return
	}
	for a := range s.pending {
		a.ProcessPendingEvents()
	}
	s.pending = nil
}

// collectEmittedEvents drains every known agent's staging buffer — the
// global registry plus every agent currently held inside a block, since a
// freshly spawned agent that emits during the same tick it enters a block
// may not yet be in the global registry (spec.md §4.1 step 5). Draining is
// idempotent: an agent visited twice simply returns nothing the second
// time.
func (s *Simulator) collectEmittedEvents() {
	touched := make(map[*agent.Agent]struct{})

	collect := func(a *agent.Agent) {
		for _, tag := range a.CollectEmittedEvents() {
			for _, recipient := range s.bus.subscribers(tag) {
				recipient.ReceiveEvent(tag)
				touched[recipient] = struct{}{}
			}
		}
	}

	for _, a := range s.agents {
		collect(a)
	}
	for _, b := range s.blocks {
		for _, a := range b.HeldAgents() {
			collect(a)
		}
	}

	if len(touched) > 0 {
		s.pending = touched
	}
}
