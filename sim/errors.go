package sim

import "errors"

// Sentinel errors for block admission, routing and space registration
// (spec.md §7). Callers compare with errors.Is. Only ErrNotAdmissible is
// the ordinary, recoverable case an upstream Queue retries on a later
// tick; the others mark structural misuse and are mostly raised as panic
// values (see each one below).
var (
	// ErrInvalidArgument marks a malformed argument. Outputs.Connect (a
	// negative slot), Release (an agent without seized resources) and
	// Split (a childless agent) panic with it; spatial managers return it
	// from Register for a malformed initial state, and
	// ConveyorSpace.RegisterEntity for a value that is not an Entity.
	ErrInvalidArgument = errors.New("sim: invalid argument")

	// ErrNotAdmissible is returned by a SpatialManager's Register or a
	// block's Take when the current state prevents acceptance — a
	// collision, an out-of-bounds endpoint, an endpoint inside an
	// obstacle. Upstream is expected to buffer the agent in a Queue.
	ErrNotAdmissible = errors.New("sim: not admissible")

	// ErrCapacityViolation is the panic value raised by Gate,
	// RestrictedAreaStart, Combine and SpatialEntry when an agent is
	// pushed directly instead of arriving via an upstream Queue that
	// buffers overflow, and by RestrictedAreaEnd for an agent that never
	// passed a RestrictedAreaStart.
	ErrCapacityViolation = errors.New("sim: capacity violation")

	// ErrMissingRoute marks an output slot or Switch key with no connected
	// target. Outputs.eject returns it; Switch, and blocks that eject from
	// their Tick, panic with it.
	ErrMissingRoute = errors.New("sim: missing route")
)

// ErrSchedulingLocked is the panic value raised when Schedule is called
// while the TimedScheduler is executing callbacks for the current tick
// (spec.md §4.2, §7). It is a structural bug, not a recoverable condition,
// so it is never returned as a plain error. The panic value is this error
// itself, unwrapped: code that recovers can compare the recovered value
// with errors.Is or ==.
var ErrSchedulingLocked = errors.New("sim: schedule called while scheduler is locked")

// ErrInvariantViolation is the error wrapped by the panic raised when a
// SpatialManager's internal post-move check fails (spec.md §4.6, §7) —
// indicating a pathfinding or construction bug rather than a condition any
// caller can recover from.
var ErrInvariantViolation = errors.New("sim: invariant violation")
