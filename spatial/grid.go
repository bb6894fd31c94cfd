package spatial

import (
	"math"

	"github.com/brentp/intintmap"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
	"github.com/adamantsim/flowsim/spatial/internal/pq"
)

// defaultClearanceFactor is the spec.md §4.6 default: clearance =
// resolution * clearanceFactor.
const defaultClearanceFactor = 0.5

// waypointEpsilon is how close "close enough" counts as arrived at a
// waypoint (spec.md §4.6: "remaining distance to the next waypoint is <=
// epsilon").
const waypointEpsilon = 1e-6

// GridOptions configures a CollisionGridSpace at construction.
type GridOptions struct {
	MinBound, MaxBound mgl64.Vec2
	Resolution         float64
	// ClearanceFactor scales Resolution into the obstacle clearance
	// margin; zero selects defaultClearanceFactor.
	ClearanceFactor float64
	// HashCellSize sizes the spatial hash's buckets; zero selects
	// 8*Resolution, comfortably larger than a typical single obstacle.
	HashCellSize float64
}

type gridMotion struct {
	path     []mgl64.Vec3
	cumDist  []float64
	total    float64
	traveled float64
	speed    float64
	target   mgl64.Vec3
	stuck    bool
}

// CollisionGridSpace is the most complete SpatialManager: it rasterizes
// obstacles onto a uniform grid via a spatial hash, precomputes 4-
// connected walkable-neighbor lists once at construction, and finds
// agent paths with A* over that grid (spec.md §4.6).
type CollisionGridSpace struct {
	opts      GridOptions
	clearance float64
	hash      *spatialHash
	obstacles []Obstacle

	dimX, dimY int
	walkable   []bool

	// cellIndex maps a packed (i,j) grid coordinate to its flat index in
	// walkable/neighbors — an int64->int64 lookup, hence intintmap rather
	// than a map[[2]int]int. cellAt is its only reader, used by Register
	// to resolve the start and target cells.
	cellIndex *intintmap.Map
	neighbors [][]int32

	agents map[*agent.Agent]*gridMotion
}

// NewCollisionGridSpace rasterizes obstacles onto a grid spanning
// [opts.MinBound, opts.MaxBound] at opts.Resolution and precomputes its
// walkable-neighbor adjacency.
func NewCollisionGridSpace(obstacles []Obstacle, opts GridOptions) *CollisionGridSpace {
	if opts.ClearanceFactor <= 0 {
		opts.ClearanceFactor = defaultClearanceFactor
	}
	if opts.HashCellSize <= 0 {
		opts.HashCellSize = opts.Resolution * 8
	}
	g := &CollisionGridSpace{
		opts:      opts,
		clearance: opts.Resolution * opts.ClearanceFactor,
		obstacles: obstacles,
		agents:    make(map[*agent.Agent]*gridMotion),
	}
	g.hash = newSpatialHash(opts.HashCellSize)
	for _, o := range obstacles {
		g.hash.insert(o, g.clearance)
	}
	g.buildGrid()
	g.buildNeighbors()
	return g
}

func (g *CollisionGridSpace) buildGrid() {
	span := g.opts.MaxBound.Sub(g.opts.MinBound)
	const eps = 1e-9
	g.dimX = int(math.Ceil(span.X()/g.opts.Resolution + eps))
	g.dimY = int(math.Ceil(span.Y()/g.opts.Resolution + eps))
	if g.dimX < 0 {
		g.dimX = 0
	}
	if g.dimY < 0 {
		g.dimY = 0
	}
	g.walkable = make([]bool, g.dimX*g.dimY)

	for i := 0; i < g.dimX; i++ {
		for j := 0; j < g.dimY; j++ {
			x0 := g.opts.MinBound.X() + float64(i)*g.opts.Resolution
			y0 := g.opts.MinBound.Y() + float64(j)*g.opts.Resolution
			x1 := x0 + g.opts.Resolution
			y1 := y0 + g.opts.Resolution
			free := g.hash.isPointFree(x0, y0) &&
				g.hash.isPointFree(x1, y0) &&
				g.hash.isPointFree(x0, y1) &&
				g.hash.isPointFree(x1, y1)
			g.walkable[g.flatIndex(i, j)] = free
		}
	}
}

func (g *CollisionGridSpace) flatIndex(i, j int) int { return i*g.dimY + j }

func packCell(i, j int) int64 { return int64(i)<<32 | int64(uint32(j)) }

func (g *CollisionGridSpace) buildNeighbors() {
	g.cellIndex = intintmap.New(g.dimX*g.dimY+1, 0.75)
	g.neighbors = make([][]int32, g.dimX*g.dimY)
	for i := 0; i < g.dimX; i++ {
		for j := 0; j < g.dimY; j++ {
			g.cellIndex.Put(packCell(i, j), int64(g.flatIndex(i, j)))
		}
	}
	deltas := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for i := 0; i < g.dimX; i++ {
		for j := 0; j < g.dimY; j++ {
			idx := g.flatIndex(i, j)
			if !g.walkable[idx] {
				continue
			}
			var list []int32
			for _, d := range deltas {
				ni, nj := i+d[0], j+d[1]
				if ni < 0 || ni >= g.dimX || nj < 0 || nj >= g.dimY {
					continue
				}
				nIdx := g.flatIndex(ni, nj)
				if g.walkable[nIdx] {
					list = append(list, int32(nIdx))
				}
			}
			g.neighbors[idx] = list
		}
	}
}

// cellAt returns the flat index of the grid cell containing (x, y), and
// whether that cell exists and is walkable.
func (g *CollisionGridSpace) cellAt(x, y float64) (int, bool) {
	i := int(math.Floor((x - g.opts.MinBound.X()) / g.opts.Resolution))
	j := int(math.Floor((y - g.opts.MinBound.Y()) / g.opts.Resolution))
	if i < 0 || i >= g.dimX || j < 0 || j >= g.dimY {
		return 0, false
	}
	idx, ok := g.cellIndex.Get(packCell(i, j))
	if !ok || !g.walkable[idx] {
		return 0, false
	}
	return int(idx), true
}

func (g *CollisionGridSpace) worldOf(idx int) mgl64.Vec2 {
	i, j := idx/g.dimY, idx%g.dimY
	return mgl64.Vec2{
		g.opts.MinBound.X() + (float64(i)+0.5)*g.opts.Resolution,
		g.opts.MinBound.Y() + (float64(j)+0.5)*g.opts.Resolution,
	}
}

func manhattan(a, b mgl64.Vec2) float64 {
	return math.Abs(a.X()-b.X()) + math.Abs(a.Y()-b.Y())
}

// findPath runs A* from startIdx to targetIdx with the Manhattan
// heuristic weighted by Resolution and a uniform edge cost of Resolution
// (spec.md §4.6), returning the sequence of flat cell indices, or nil if
// unreachable.
func (g *CollisionGridSpace) findPath(startIdx, targetIdx int) []int {
	if startIdx == targetIdx {
		return []int{startIdx}
	}
	targetWorld := g.worldOf(targetIdx)

	open := pq.New[float64, int]()
	gScore := map[int]float64{startIdx: 0}
	cameFrom := map[int]int{}
	visited := map[int]bool{}

	open.Push(manhattan(g.worldOf(startIdx), targetWorld)*g.opts.Resolution, startIdx)

	for open.Len() > 0 {
		current, _, _ := open.Pop()
		if current == targetIdx {
			return g.reconstruct(cameFrom, current)
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, n := range g.neighbors[current] {
			neighbor := int(n)
			tentative := gScore[current] + g.opts.Resolution
			if existing, ok := gScore[neighbor]; ok && tentative >= existing {
				continue
			}
			gScore[neighbor] = tentative
			cameFrom[neighbor] = current
			f := tentative + manhattan(g.worldOf(neighbor), targetWorld)*g.opts.Resolution
			open.Push(f, neighbor)
		}
	}
	return nil
}

func (g *CollisionGridSpace) reconstruct(cameFrom map[int]int, end int) []int {
	path := []int{end}
	for {
		prev, ok := cameFrom[path[len(path)-1]]
		if !ok {
			break
		}
		path = append(path, prev)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Register validates start, target and speed and, when a walkable grid
// path connects them, converts it to world-space waypoints, centering
// each cell and appending the exact target point (spec.md §4.6). Start
// and target must each lie on the grid, in a walkable cell — that much is
// an admission failure (ErrNotAdmissible). Whether a path exists between
// them is not: an agent whose target is unreachable from its start is
// registered anyway, with an empty path, and is left permanently stuck —
// Update never advances it and IsMovementComplete never reports it done.
// Motion's "stuck" case and Register's endpoint validation are deliberately
// separate failure modes; only the latter can reject a Register call.
func (g *CollisionGridSpace) Register(a *agent.Agent, initial State) error {
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

	startIdx, ok := g.cellAt(start.X(), start.Y())
	if !ok {
		return sim.ErrNotAdmissible
	}
	targetIdx, ok := g.cellAt(target.X(), target.Y())
	if !ok {
		return sim.ErrNotAdmissible
	}
	cellPath := g.findPath(startIdx, targetIdx)
	if cellPath == nil {
		m := &gridMotion{path: []mgl64.Vec3{start}, cumDist: []float64{0}, speed: speed, target: target, stuck: true}
		g.agents[a] = m
		mirror(a, g.stateOf(m))
		return nil
	}

	z := start.Z()
	path := make([]mgl64.Vec3, 0, len(cellPath)+1)
	for _, idx := range cellPath {
		w := g.worldOf(idx)
		path = append(path, mgl64.Vec3{w.X(), w.Y(), z})
	}
	path = append(path, target)

	cum, total := cumulative(path)
	m := &gridMotion{path: path, cumDist: cum, total: total, speed: speed, target: target}
	g.agents[a] = m
	mirror(a, g.stateOf(m))
	return nil
}

// Unregister drops agent's motion record.
func (g *CollisionGridSpace) Unregister(a *agent.Agent) error {
	delete(g.agents, a)
	return nil
}

// Update advances every registered agent along its precomputed path by
// speed*deltaTime, then verifies the new position is not inside any
// obstacle — a failure there indicates a pathfinding or grid-construction
// bug, not a recoverable runtime condition, so it panics with
// ErrInvariantViolation (spec.md §4.6, §7, §8 property 4).
func (g *CollisionGridSpace) Update(deltaTime float64) {
	for a, m := range g.agents {
		if m.stuck || m.total == 0 || m.traveled >= m.total {
			continue
		}
		m.traveled += m.speed * deltaTime
		if m.total-m.traveled <= waypointEpsilon {
			m.traveled = m.total
		}
		pos := positionAlong(m.path, m.cumDist, m.traveled)
		if !g.hash.isPointFree(pos.X(), pos.Y()) {
			panic(sim.ErrInvariantViolation)
		}
		mirror(a, g.stateOf(m))
	}
}

func (g *CollisionGridSpace) stateOf(m *gridMotion) State {
	progress := 1.0
	if m.stuck {
		progress = 0
	} else if m.total > 0 {
		progress = m.traveled / m.total
	}
	return State{
		"position": positionAlong(m.path, m.cumDist, m.traveled),
		"target":   m.target,
		"speed":    m.speed,
		"progress": progress,
		"path":     m.path,
	}
}

// GetState returns agent's current position/progress record.
func (g *CollisionGridSpace) GetState(a *agent.Agent) (State, bool) {
	m, ok := g.agents[a]
	if !ok {
		return nil, false
	}
	return g.stateOf(m), true
}

// IsMovementComplete reports whether agent has reached the end of its
// path. It is always false for an agent that is permanently stuck with no
// path (spec.md §4.6: "If no path exists and the agent is not at the
// target, the agent is stuck" — stuck agents never complete).
func (g *CollisionGridSpace) IsMovementComplete(a *agent.Agent) bool {
	m, ok := g.agents[a]
	if !ok {
		return false
	}
	return !m.stuck && (m.total == 0 || m.traveled >= m.total)
}
