// Package agent defines the passive token type that flows through a
// simulation's block graph.
//
// An Agent carries user-defined state (attached ad hoc by callers — the
// engine never inspects it) plus the bookkeeping the engine itself needs:
// which block currently holds it, its mirrored spatial state, and the event
// mailboxes used by the pub/sub bus in package sim. Identity is reference
// equality: two *Agent values are the same agent iff they are the same
// pointer, never compared by ID or content.
package agent

import "github.com/google/uuid"

// CurrentBlock is the minimal surface a block exposes back to an Agent and
// to callers inspecting Agent.Block(). It is satisfied by block.Base and
// kept here, rather than importing package block, to avoid a import cycle:
// block depends on agent, not the other way around.
type CurrentBlock interface {
	// ID returns the stable identifier the block was registered under.
	ID() uint64
}

// Hooks are user-overridable reactions to engine-driven lifecycle events.
// Either field may be left nil; Agent treats a nil hook as a no-op.
type Hooks struct {
	// OnEnterBlock is invoked synchronously when the agent enters a new
	// block, after Block() has already been updated to reflect it.
	OnEnterBlock func(a *Agent, block CurrentBlock)
	// OnEvent is invoked once per delivered event tag, one tick after the
	// tag was emitted.
	OnEvent func(a *Agent, tag string)
}

// Agent is a passive token: it never runs its own logic beyond the two
// hooks in Hooks. All routing decisions belong to blocks and spaces.
type Agent struct {
	// ID is a stable identifier assigned at construction, used only for
	// logging/inspection — never for identity comparisons (use the pointer
	// itself for that).
	ID uuid.UUID

	// Length and Width give the agent's geometric extent; spatial managers
	// that model occupancy (e.g. conveyor collision windows) read these.
	// Both default to zero, meaning "pointlike".
	Length, Width float64

	// SpaceState mirrors whatever the agent's registering SpatialManager
	// keeps authoritative internally (keys such as "position", "target",
	// "speed", "progress", "path"). It is nil/empty for agents that were
	// never registered in a space, and is only trustworthy while the agent
	// remains registered.
	SpaceState map[string]any

	// Extra is a typed-extension bag keyed by subsystem identifier, used by
	// cooperating subsystems (resource seizure, restricted areas, conveyor
	// assignment) to stash context on an agent without reaching for
	// untyped, stringly-keyed attributes. Keys are string constants
	// declared by the subsystems that use them (resource.ExtraAcquired,
	// resource.ExtraPool, and package block's unexported restricted-area
	// key).
	Extra map[string]any

	// Children and Parents implement the Combine/Split container protocol:
	// Children holds pickups attached to a container agent; Parents holds
	// the containers a pickup has been attached to.
	Children []*Agent
	Parents  []*Agent

	hooks Hooks

	block   CurrentBlock
	pending []string
	staging []string
}

// New creates an unregistered Agent with a fresh ID and no hooks. Use
// WithHooks to attach behaviour before or after construction.
func New() *Agent {
	return &Agent{ID: uuid.New()}
}

// WithHooks attaches the given hooks, replacing any previously set, and
// returns the agent for chaining at construction time.
func (a *Agent) WithHooks(h Hooks) *Agent {
	a.hooks = h
	return a
}

// Block returns the block the agent most recently entered, or nil if the
// agent has not yet entered any block. Removal from the simulator's
// registry does not clear it: an agent absorbed by a Sink reports that
// Sink.
func (a *Agent) Block() CurrentBlock { return a.block }

// Emit stages tag for delivery to every agent subscribed to it, one tick
// after the current tick completes. It may be called from OnEnterBlock or
// OnEvent; staged tags are collected by the simulator at end of tick.
func (a *Agent) Emit(tag string) {
	a.staging = append(a.staging, tag)
}

// EnterBlock is called by the engine when the agent is admitted into b. It
// updates Block() and fires the OnEnterBlock hook, in that order.
func (a *Agent) EnterBlock(b CurrentBlock) {
	a.block = b
	if a.hooks.OnEnterBlock != nil {
		a.hooks.OnEnterBlock(a, b)
	}
}

// ReceiveEvent appends tag to the agent's delivery mailbox. Called by the
// engine's event bus; user code should call Emit instead.
func (a *Agent) ReceiveEvent(tag string) {
	a.pending = append(a.pending, tag)
}

// ProcessPendingEvents drains the delivery mailbox, invoking OnEvent once
// per tag in insertion order.
func (a *Agent) ProcessPendingEvents() {
	if len(a.pending) == 0 {
		return
	}
	pending := a.pending
	a.pending = nil
	for _, tag := range pending {
		if a.hooks.OnEvent != nil {
			a.hooks.OnEvent(a, tag)
		}
	}
}

// CollectEmittedEvents drains and returns the tags staged by Emit during the
// current tick, clearing the staging buffer.
func (a *Agent) CollectEmittedEvents() []string {
	if len(a.staging) == 0 {
		return nil
	}
	staged := a.staging
	a.staging = nil
	return staged
}
