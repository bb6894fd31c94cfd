package spatial

import (
	"math"

	"github.com/adamantsim/flowsim/agent"
	"github.com/adamantsim/flowsim/sim"
	"github.com/adamantsim/flowsim/spatial/internal/pq"
)

// Entity is a node in a ConveyorSpace's transport graph: a Conveyor, a
// TurnTable, or any other structured-space component (spec.md §4.6).
type Entity interface {
	ID() string
	// TraversalTime is the cost Dijkstra assigns to transiting this
	// entity: length/speed for a Conveyor, 2*pi/angular_speed for a
	// TurnTable, 1.0 for anything else.
	TraversalTime() float64
	// Connections lists the IDs of entities this one feeds into,
	// forming the directed transport graph.
	Connections() []string
}

// Conveyor is a polyline entity of a given total Length traversed at a
// constant linear Speed.
type Conveyor struct {
	EntityID string
	Length   float64
	Speed    float64
	Conn     []string
}

func (c *Conveyor) ID() string { return c.EntityID }

func (c *Conveyor) TraversalTime() float64 {
	if c.Speed <= 0 {
		return 1.0
	}
	return c.Length / c.Speed
}

func (c *Conveyor) Connections() []string { return c.Conn }

// TurnTable is a rotating entity of a given Radius and AngularSpeed
// (radians per tick).
type TurnTable struct {
	EntityID     string
	Radius       float64
	AngularSpeed float64
	Conn         []string
}

func (t *TurnTable) ID() string { return t.EntityID }

func (t *TurnTable) TraversalTime() float64 {
	if t.AngularSpeed <= 0 {
		return 1.0
	}
	return 2 * math.Pi / t.AngularSpeed
}

func (t *TurnTable) Connections() []string { return t.Conn }

type conveyorMotion struct {
	path             []string
	idx              int
	elapsed          float64
	progressOnEntity float64
	progressOnPath   float64
	length           float64
}

// ConveyorSpace is the SpatialManager for a graph of Conveyor/TurnTable
// entities (spec.md §4.6). Register runs Dijkstra over the entity graph,
// weighting each edge by the TraversalTime of the entity being left, and
// rejects agents whose start and end entity are not connected. Update
// advances each agent's elapsed time on its current entity, hopping to
// the next entity at progress 1.0.
type ConveyorSpace struct {
	entities  map[string]Entity
	occupants map[string][]*agent.Agent
	agents    map[*agent.Agent]*conveyorMotion
}

// NewConveyorSpace constructs an empty ConveyorSpace.
func NewConveyorSpace() *ConveyorSpace {
	return &ConveyorSpace{
		entities:  make(map[string]Entity),
		occupants: make(map[string][]*agent.Agent),
		agents:    make(map[*agent.Agent]*conveyorMotion),
	}
}

// RegisterEntity adds entity to the transport graph (spec.md §4.6 optional
// EntityRegistrar capability).
func (c *ConveyorSpace) RegisterEntity(e any) error {
	entity, ok := e.(Entity)
	if !ok {
		return sim.ErrInvalidArgument
	}
	c.entities[entity.ID()] = entity
	return nil
}

// IsEntityRegistered reports whether id names a registered entity.
func (c *ConveyorSpace) IsEntityRegistered(id string) bool {
	_, ok := c.entities[id]
	return ok
}

// dijkstra finds a minimum-total-traversal-time path from startID to
// endID (spec.md §8 scenario S4). Connections are relaxed in their
// declared order and a node keeps the first predecessor that reached it
// at its best cost, but pq.Heap does not preserve insertion order between
// equal priorities, so which of several equal-cost paths is returned is
// not defined.
func (c *ConveyorSpace) dijkstra(startID, endID string) []string {
	dist := map[string]float64{startID: 0}
	prev := map[string]string{}
	visited := map[string]bool{}

	open := pq.New[float64, string]()
	open.Push(0, startID)

	for open.Len() > 0 {
		current, _, _ := open.Pop()
		if visited[current] {
			continue
		}
		visited[current] = true
		if current == endID {
			break
		}
		entity, ok := c.entities[current]
		if !ok {
			continue
		}
		cost := entity.TraversalTime()
		for _, next := range entity.Connections() {
			if _, ok := c.entities[next]; !ok {
				continue
			}
			tentative := dist[current] + cost
			if existing, ok := dist[next]; !ok || tentative < existing {
				dist[next] = tentative
				prev[next] = current
				open.Push(tentative, next)
			}
		}
	}

	if !visited[endID] {
		return nil
	}
	path := []string{endID}
	for path[len(path)-1] != startID {
		p, ok := prev[path[len(path)-1]]
		if !ok {
			return nil
		}
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// collisionFree reports whether an agent of the given length can be
// admitted onto conveyorID at progress 0 without overlapping any agent
// currently on it (spec.md §4.6, §8 property 3).
func (c *ConveyorSpace) collisionFree(conveyorID string, length float64) bool {
	conv, ok := c.entities[conveyorID].(*Conveyor)
	if !ok || conv.Length <= 0 {
		return true
	}
	newFrac := length / conv.Length
	for _, occ := range c.occupants[conveyorID] {
		m, ok := c.agents[occ]
		if !ok {
			continue
		}
		occFrac := m.length / conv.Length
		occLo, occHi := m.progressOnEntity-occFrac, m.progressOnEntity
		if occHi >= 0 && occLo <= newFrac {
			return false
		}
	}
	return true
}

// Register runs Dijkstra from initial["start_entity"] to
// initial["end_entity"] and admits the agent if the end is reachable and
// the first entity has collision room (spec.md §4.6).
func (c *ConveyorSpace) Register(a *agent.Agent, initial State) error {
	startID, ok := initial["start_entity"].(string)
	if !ok {
		return sim.ErrInvalidArgument
	}
	endID, ok := initial["end_entity"].(string)
	if !ok {
		return sim.ErrInvalidArgument
	}
	if _, ok := c.entities[startID]; !ok {
		return sim.ErrNotAdmissible
	}
	path := c.dijkstra(startID, endID)
	if path == nil {
		return sim.ErrNotAdmissible
	}
	length := a.Length
	if !c.collisionFree(startID, length) {
		return sim.ErrNotAdmissible
	}

	m := &conveyorMotion{path: path, length: length}
	c.agents[a] = m
	c.occupants[startID] = append(c.occupants[startID], a)
	mirror(a, c.stateOf(m))
	return nil
}

// Unregister removes agent from its current entity's occupant list and
// drops its motion record.
func (c *ConveyorSpace) Unregister(a *agent.Agent) error {
	m, ok := c.agents[a]
	if !ok {
		return nil
	}
	c.removeOccupant(m.path[m.idx], a)
	delete(c.agents, a)
	return nil
}

func (c *ConveyorSpace) removeOccupant(entityID string, a *agent.Agent) {
	list := c.occupants[entityID]
	for i, occ := range list {
		if occ == a {
			c.occupants[entityID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Update advances every agent's elapsed time on its current entity,
// hopping to the next entity once progress-on-entity reaches 1.0
// (spec.md §4.6).
func (c *ConveyorSpace) Update(deltaTime float64) {
	for a, m := range c.agents {
		if m.progressOnPath >= 1 {
			continue
		}
		entity := c.entities[m.path[m.idx]]
		entityTime := entity.TraversalTime()
		m.elapsed += deltaTime
		if entityTime <= 0 {
			m.progressOnEntity = 1
		} else {
			m.progressOnEntity = m.elapsed / entityTime
		}
		if m.progressOnEntity >= 1 {
			c.removeOccupant(m.path[m.idx], a)
			if m.idx == len(m.path)-1 {
				m.progressOnEntity = 1
				m.progressOnPath = 1
			} else {
				m.idx++
				m.elapsed = 0
				m.progressOnEntity = 0
				c.occupants[m.path[m.idx]] = append(c.occupants[m.path[m.idx]], a)
			}
		}
		m.progressOnPath = (float64(m.idx) + m.progressOnEntity) / float64(len(m.path))
		mirror(a, c.stateOf(m))
	}
}

func (c *ConveyorSpace) stateOf(m *conveyorMotion) State {
	return State{
		"entity":   m.path[m.idx],
		"progress": m.progressOnPath,
		"path":     m.path,
	}
}

// GetState returns agent's current entity/progress record.
func (c *ConveyorSpace) GetState(a *agent.Agent) (State, bool) {
	m, ok := c.agents[a]
	if !ok {
		return nil, false
	}
	return c.stateOf(m), true
}

// IsMovementComplete reports whether agent has reached the final entity
// on its routed path.
func (c *ConveyorSpace) IsMovementComplete(a *agent.Agent) bool {
	m, ok := c.agents[a]
	return ok && m.progressOnPath >= 1
}
