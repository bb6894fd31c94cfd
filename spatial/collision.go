package spatial

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
)

// maxDetourIterations caps the boundary-follow loop in buildPath. Spec.md
// §4.6/§9 documents this construction as a heuristic that may return an
// incorrect (still-intersecting) detour for pathological obstacle
// arrangements — it is not a complete path planner, just a simple
// boundary follow.
const maxDetourIterations = 20

// detourClearance nudges a chosen polygon vertex outward from the
// obstacle's centroid so the path does not graze the boundary exactly.
const detourClearance = 0.25

type collisionMotion struct {
	path     []mgl64.Vec3
	cumDist  []float64
	total    float64
	traveled float64
	speed    float64
}

// CollisionSpace is a SpatialManager that rejects registration when either
// endpoint lies inside an obstacle, and otherwise routes agents along a
// path computed once at registration — a straight line if one is free, or
// a boundary-follow detour around the first blocking obstacle (spec.md
// §4.6, §9 open question).
type CollisionSpace struct {
	obstacles []Obstacle
	agents    map[*agent.Agent]*collisionMotion
}

// NewCollisionSpace constructs a CollisionSpace holding the given prism
// obstacles.
func NewCollisionSpace(obstacles []Obstacle) *CollisionSpace {
	return &CollisionSpace{obstacles: obstacles, agents: make(map[*agent.Agent]*collisionMotion)}
}

func (c *CollisionSpace) insideAny(p mgl64.Vec3) bool {
	for _, o := range c.obstacles {
		if o.Contains(p) {
			return true
		}
	}
	return false
}

// firstBlocking returns the first obstacle whose base intersects segment
// a-b in XY, if any.
func (c *CollisionSpace) firstBlocking(a, b mgl64.Vec3) (Obstacle, bool) {
	a2, b2 := mgl64.Vec2{a.X(), a.Y()}, mgl64.Vec2{b.X(), b.Y()}
	for _, o := range c.obstacles {
		if o.IntersectsSegment(a2, b2) {
			return o, true
		}
	}
	return Obstacle{}, false
}

// nearestClearVertex picks the polygon vertex of o, pushed outward from
// its centroid by detourClearance, that is closest to target — a cheap
// boundary-follow step, not a guaranteed-shortest detour.
func nearestClearVertex(o Obstacle, target mgl64.Vec3) mgl64.Vec3 {
	centroid := o.CentroidXY()
	best := o.Polygon[0]
	bestDist := -1.0
	for _, v := range o.Polygon {
		dir := v.Sub(centroid)
		if l := dir.Len(); l > 1e-9 {
			dir = dir.Mul(1 / l)
		}
		pushed := v.Add(dir.Mul(detourClearance))
		d := pushed.Sub(mgl64.Vec2{target.X(), target.Y()}).Len()
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = pushed
		}
	}
	return mgl64.Vec3{best.X(), best.Y(), target.Z()}
}

// buildPath returns a straight line from start to target if it is free of
// obstacles, else a boundary-follow detour capped at maxDetourIterations
// hops around the first obstacle blocking the current leg.
func (c *CollisionSpace) buildPath(start, target mgl64.Vec3) []mgl64.Vec3 {
	path := []mgl64.Vec3{start}
	current := start
	for i := 0; i < maxDetourIterations; i++ {
		blocking, blocked := c.firstBlocking(current, target)
		if !blocked {
			return append(path, target)
		}
		wp := nearestClearVertex(blocking, target)
		path = append(path, wp)
		current = wp
	}
	// Iteration cap reached: append the target anyway. The resulting path
	// may still cross an obstacle — this is the documented limitation of
	// the boundary-follow heuristic (spec.md §9).
	return append(path, target)
}

func cumulative(path []mgl64.Vec3) ([]float64, float64) {
	cum := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		cum[i] = cum[i-1] + path[i].Sub(path[i-1]).Len()
	}
	total := cum[len(cum)-1]
	return cum, total
}

func positionAlong(path []mgl64.Vec3, cum []float64, traveled float64) mgl64.Vec3 {
	if traveled <= 0 {
		return path[0]
	}
	last := len(path) - 1
	if traveled >= cum[last] {
		return path[last]
	}
	for i := 1; i <= last; i++ {
		if traveled <= cum[i] {
			segLen := cum[i] - cum[i-1]
			if segLen == 0 {
				return path[i]
			}
			t := (traveled - cum[i-1]) / segLen
			return path[i-1].Add(path[i].Sub(path[i-1]).Mul(t))
		}
	}
	return path[last]
}

// Register rejects if start or target lies inside any obstacle (spec.md
// §4.6: "rejects if either endpoint lies inside any obstacle"). Otherwise
// it builds a path — the caller-supplied one in initial["path"]
// ([]mgl64.Vec3), or a computed straight-line/detour path — and registers
// motion along it at the given speed.
func (c *CollisionSpace) Register(a *agent.Agent, initial State) error {
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
	if c.insideAny(start) || c.insideAny(target) {
		return sim.ErrNotAdmissible
	}

	var path []mgl64.Vec3
	if supplied, ok := initial["path"].([]mgl64.Vec3); ok && len(supplied) >= 2 {
		path = supplied
	} else {
		path = c.buildPath(start, target)
	}
	cum, total := cumulative(path)
	m := &collisionMotion{path: path, cumDist: cum, total: total, speed: speed}
	c.agents[a] = m
	mirror(a, c.stateOf(m))
	return nil
}

// Unregister drops agent's motion record.
func (c *CollisionSpace) Unregister(a *agent.Agent) error {
	delete(c.agents, a)
	return nil
}

// Update advances every registered agent along its path by speed*deltaTime
// of world distance.
func (c *CollisionSpace) Update(deltaTime float64) {
	for a, m := range c.agents {
		if m.total == 0 {
			continue
		}
		if m.traveled >= m.total {
			continue
		}
		m.traveled += m.speed * deltaTime
		if m.traveled > m.total {
			m.traveled = m.total
		}
		mirror(a, c.stateOf(m))
	}
}

func (c *CollisionSpace) stateOf(m *collisionMotion) State {
	progress := 1.0
	if m.total > 0 {
		progress = m.traveled / m.total
	}
	return State{
		"position": positionAlong(m.path, m.cumDist, m.traveled),
		"target":   m.path[len(m.path)-1],
		"speed":    m.speed,
		"progress": progress,
		"path":     m.path,
	}
}

// GetState returns agent's current position/progress record.
func (c *CollisionSpace) GetState(a *agent.Agent) (State, bool) {
	m, ok := c.agents[a]
	if !ok {
		return nil, false
	}
	return c.stateOf(m), true
}

// IsMovementComplete reports whether agent has traveled its full path.
func (c *CollisionSpace) IsMovementComplete(a *agent.Agent) bool {
	m, ok := c.agents[a]
	return ok && (m.total == 0 || m.traveled >= m.total)
}
