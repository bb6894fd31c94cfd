package sim

import "math/rand/v2"

// TimedEvent is a callback deferred to a future tick, optionally re-armed
// after it fires (spec.md §4.2).
type TimedEvent struct {
	Callback  func(tick int64)
	Recurring bool
	// Interval is the delay used to re-arm a recurring event after it
	// fires. An interval below 1 is promoted to 1 so a recurring event
	// can never starve itself firing on the same tick forever.
	Interval int64
}

type scheduledEntry struct {
	fireTick int64
	ev       TimedEvent
}

// TimedScheduler is a deferred-event queue bucketed by absolute fire tick.
// Events sharing a fire tick are executed in an order that is a
// deterministic function of the scheduler's PRNG stream, not insertion
// order (spec.md §4.2, §8 property 7). The zero value is not usable; build
// one with newTimedScheduler.
type TimedScheduler struct {
	buckets     map[int64][]scheduledEntry
	currentTick int64
	locked      bool
}

func newTimedScheduler() *TimedScheduler {
	return &TimedScheduler{buckets: make(map[int64][]scheduledEntry)}
}

// Schedule arms callback to fire at currentTick+delay. A negative delay is
// clamped to zero. Calling Schedule while the scheduler is firing events
// for the current tick is a structural bug — spec.md §7 classifies it as
// fatal — so this panics with ErrSchedulingLocked rather than returning an
// error a caller might silently ignore.
func (s *TimedScheduler) Schedule(callback func(tick int64), delay int64, recurring bool) {
	if s.locked {
		panic(ErrSchedulingLocked)
	}
	if delay < 0 {
		delay = 0
	}
	target := s.currentTick + delay
	s.buckets[target] = append(s.buckets[target], scheduledEntry{
		fireTick: target,
		ev:       TimedEvent{Callback: callback, Recurring: recurring, Interval: delay},
	})
}

// fire pops every event bucketed at tick, shuffles them with rng (the
// simulator's seeded stream) for a deterministic-but-randomized tie-break,
// then executes them with scheduling locked. Recurring events are re-armed
// after every callback in the batch has run. A panicking callback aborts
// the tick; the lock is always released via defer so a later, unrelated
// tick is not left permanently locked.
func (s *TimedScheduler) fire(tick int64, rng *rand.Rand) {
	s.currentTick = tick
	due := s.buckets[tick]
	if len(due) == 0 {
		return
	}
	delete(s.buckets, tick)
	rng.Shuffle(len(due), func(i, j int) { due[i], due[j] = due[j], due[i] })

	s.locked = true
	defer func() { s.locked = false }()

	for _, e := range due {
		e.ev.Callback(tick)
	}
	for _, e := range due {
		if !e.ev.Recurring {
			continue
		}
		interval := e.ev.Interval
		if interval < 1 {
			interval = 1
		}
		next := tick + interval
		s.buckets[next] = append(s.buckets[next], scheduledEntry{fireTick: next, ev: e.ev})
	}
}
