package spatial

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

type noCollisionMotion struct {
	start, target mgl64.Vec3
	speed         float64
	progress      float64
}

// NoCollisionSpace is the simplest SpatialManager: straight-line linear
// interpolation from start to target at constant speed, with no obstacle
// awareness whatsoever (spec.md §4.6).
type NoCollisionSpace struct {
	agents map[*agent.Agent]*noCollisionMotion
}

// NewNoCollisionSpace constructs an empty NoCollisionSpace.
func NewNoCollisionSpace() *NoCollisionSpace {
	return &NoCollisionSpace{agents: make(map[*agent.Agent]*noCollisionMotion)}
}

func vec3From(v any) (mgl64.Vec3, bool) {
	out, ok := v.(mgl64.Vec3)
	return out, ok
}

func floatFrom(v any) (float64, bool) {
	out, ok := v.(float64)
	return out, ok
}

// Register admits agent if initial carries "start", "target" (mgl64.Vec3)
// and "speed" (float64); anything else is ErrInvalidArgument.
func (n *NoCollisionSpace) Register(a *agent.Agent, initial State) error {
	start, ok := vec3From(initial["start"])
	if !ok {
		return sim.ErrInvalidArgument
	}
	target, ok := vec3From(initial["target"])
	if !ok {
		return sim.ErrInvalidArgument
	}
	speed, ok := floatFrom(initial["speed"])
	if !ok || speed < 0 {
		return sim.ErrInvalidArgument
	}
	m := &noCollisionMotion{start: start, target: target, speed: speed}
	n.agents[a] = m
	mirror(a, n.stateOf(m))
	return nil
}

// Unregister drops agent's motion record.
func (n *NoCollisionSpace) Unregister(a *agent.Agent) error {
	delete(n.agents, a)
	return nil
}

// Update advances every registered agent's progress by speed*deltaTime
// (normalized against the start-target distance), clamped to 1.
func (n *NoCollisionSpace) Update(deltaTime float64) {
	for a, m := range n.agents {
		if m.progress >= 1 {
			continue
		}
		dist := m.target.Sub(m.start).Len()
		if dist == 0 {
			m.progress = 1
		} else {
			m.progress += (m.speed * deltaTime) / dist
			if m.progress > 1 {
				m.progress = 1
			}
		}
		mirror(a, n.stateOf(m))
	}
}

func (n *NoCollisionSpace) position(m *noCollisionMotion) mgl64.Vec3 {
	return m.start.Add(m.target.Sub(m.start).Mul(m.progress))
}

func (n *NoCollisionSpace) stateOf(m *noCollisionMotion) State {
	return State{
		"position": n.position(m),
		"target":   m.target,
		"speed":    m.speed,
		"progress": m.progress,
	}
}

// GetState returns agent's current position/progress record.
func (n *NoCollisionSpace) GetState(a *agent.Agent) (State, bool) {
	m, ok := n.agents[a]
	if !ok {
		return nil, false
	}
	return n.stateOf(m), true
}

// IsMovementComplete reports whether agent's progress has reached 1.
func (n *NoCollisionSpace) IsMovementComplete(a *agent.Agent) bool {
	m, ok := n.agents[a]
	return ok && m.progress >= 1
}
