package sim

import (
	"log/slog"

	"github.com/adamantsim/flowsim/agent"
)

// Config holds the construction-time parameters for a Simulator (spec.md
// §6: "Simulator(max_ticks, random_seed, spaces_map, optional_view_hook)").
// withDefaults fills in a nil Logger; every other field is used as given,
// so a zero MaxTicks yields a Simulator whose Run does nothing. This
// mirrors the teacher's Config/New()/withDefaults shape.
type Config struct {
	// MaxTicks bounds Run: it advances current_tick from 0 while
	// current_tick < MaxTicks. A MaxTicks of 0 means Run returns
	// immediately without ticking.
	MaxTicks int64
	// Seed drives the PRNG stream used exclusively for same-tick
	// timed-event tie-breaking and exposed to user code (via Rand) for
	// stochastic spawn schedules and predicates.
	Seed uint64
	// Spaces pre-registers named spatial managers, equivalent to calling
	// AddSpace for each entry. Registration order is Go map iteration
	// order is NOT guaranteed; callers needing deterministic space
	// registration order should call AddSpace directly instead.
	Spaces map[string]Space
	// View, if non-nil, is invoked at the end of every tick.
	View ViewHook
	// Logger is stored on the Simulator and returned by its Logger method;
	// the Simulator itself writes nothing to it. A nil Logger defaults to
	// slog.Default(), matching console.New and the plugin event hub.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// New builds a Simulator from the configuration.
func (c Config) New() *Simulator {
	c = c.withDefaults()
	s := &Simulator{
		maxTicks:  c.MaxTicks,
		rng:       newRand(c.Seed),
		scheduler: newTimedScheduler(),
		bus:       newEventBus(),
		spaces:    make(map[string]Space, len(c.Spaces)),
		spaceOrd:  make([]string, 0, len(c.Spaces)),
		agentIdx:  make(map[*agent.Agent]int),
		view:      c.View,
		log:       c.Logger,
	}
	for name, space := range c.Spaces {
		s.AddSpace(name, space)
	}
	return s
}
