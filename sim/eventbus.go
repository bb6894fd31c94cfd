package sim

import (
	"github.com/adamantsim/flowsim/agent"
	"github.com/segmentio/fasthash/fnv1a"
)

// EventBus holds the subscription table event tags route through (spec.md
// §3, §4.3). Subscriptions are keyed by the fasthash FNV-1a hash of the
// tag rather than the raw string, trading a hash computation for cheaper
// map probing on the hot subscribe/collect path — the same non-cryptographic
// fast-hash role fasthash plays elsewhere in the retrieved corpus.
type EventBus struct {
	subs map[uint64]map[*agent.Agent]struct{}
}

func newEventBus() *EventBus {
	return &EventBus{subs: make(map[uint64]map[*agent.Agent]struct{})}
}

func tagKey(tag string) uint64 { return fnv1a.HashString64(tag) }

// Subscribe adds a to the set of recipients for tag. Subscribing the same
// agent to the same tag more than once is a no-op.
func (b *EventBus) Subscribe(a *agent.Agent, tag string) {
	key := tagKey(tag)
	set, ok := b.subs[key]
	if !ok {
		set = make(map[*agent.Agent]struct{})
		b.subs[key] = set
	}
	set[a] = struct{}{}
}

// Unsubscribe removes a from tag's recipient set, if present. Agent
// destruction does not call this automatically (spec.md §9 open
// questions) — a subscription outlives the agent it names unless a caller
// removes it explicitly.
func (b *EventBus) Unsubscribe(a *agent.Agent, tag string) {
	if set, ok := b.subs[tagKey(tag)]; ok {
		delete(set, a)
	}
}

// subscribers returns the current recipient set for tag. The returned
// slice has no defined order — spec.md §4.3 only guarantees ordering
// within a single agent's own mailbox, not across recipients.
func (b *EventBus) subscribers(tag string) []*agent.Agent {
	set, ok := b.subs[tagKey(tag)]
	if !ok || len(set) == 0 {
		return nil
	}
	out := make([]*agent.Agent, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	return out
}

// deliver fans tag out to every subscriber's next-tick mailbox.
func (b *EventBus) deliver(tag string) {
	for _, a := range b.subscribers(tag) {
		a.ReceiveEvent(tag)
	}
}
