// Package bsp is a minimal in-process bulk-synchronous-parallel execution
// substrate. Vertices compute once per superstep behind a global barrier,
// messages sent during superstep s are delivered at exactly superstep s+1,
// and named aggregators combine per-vertex contributions with
// order-independent operators between barriers.
package bsp

import (
	"fmt"
	"runtime"
	"sync"
)

// ComputeFunc is invoked once per active vertex per superstep with every
// message addressed to that vertex since the previous superstep. It may
// mutate only its own vertex's value.
type ComputeFunc[ID comparable, V, M any] func(g *Graph[ID, V, M], v *Vertex[ID, V, M], msgs []M) error

type Config[ID comparable, V, M any] struct {
	Compute ComputeFunc[ID, V, M]
	// DefaultValue builds the state of a vertex created lazily by a
	// message addressed to an unknown ID.
	DefaultValue func(id ID) V
	// Workers caps compute parallelism within a superstep; zero means
	// runtime.NumCPU().
	Workers int
}

type Graph[ID comparable, V, M any] struct {
	cfg Config[ID, V, M]

	mu       sync.Mutex
	vertices map[ID]*Vertex[ID, V, M]
	order    []ID

	aggregators map[string]Aggregator
	superstep   int
	pending     int
}

func NewGraph[ID comparable, V, M any](cfg Config[ID, V, M]) (*Graph[ID, V, M], error) {
	if cfg.Compute == nil {
		return nil, fmt.Errorf("bsp: %w", ErrNilCompute)
	}
	if cfg.DefaultValue == nil {
		return nil, fmt.Errorf("bsp: %w", ErrNilDefaultValue)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Graph[ID, V, M]{
		cfg:         cfg,
		vertices:    make(map[ID]*Vertex[ID, V, M]),
		aggregators: make(map[string]Aggregator),
	}, nil
}

func (g *Graph[ID, V, M]) AddVertex(id ID, value V) *Vertex[ID, V, M] {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addVertexLocked(id, value)
}

func (g *Graph[ID, V, M]) addVertexLocked(id ID, value V) *Vertex[ID, V, M] {
	if v, ok := g.vertices[id]; ok {
		return v
	}
	v := &Vertex[ID, V, M]{id: id, value: value}
	g.vertices[id] = v
	g.order = append(g.order, id)
	return v
}

func (g *Graph[ID, V, M]) Vertex(id ID) (*Vertex[ID, V, M], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.vertices[id]
	return v, ok
}

// VertexIDs returns every vertex id in insertion order.
func (g *Graph[ID, V, M]) VertexIDs() []ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]ID, len(g.order))
	copy(ids, g.order)
	return ids
}

// Superstep reports the round currently executing; it is stable for the
// whole of a compute pass and the post-step callbacks that follow it.
func (g *Graph[ID, V, M]) Superstep() int {
	return g.superstep
}

// RegisterAggregator installs a named aggregator. Registration happens
// once, before the first superstep runs.
func (g *Graph[ID, V, M]) RegisterAggregator(name string, agg Aggregator) {
	g.aggregators[name] = agg
}

// Aggregator returns the named aggregator, or nil when none is registered.
func (g *Graph[ID, V, M]) Aggregator(name string) Aggregator {
	return g.aggregators[name]
}

// SendMessage queues a message for delivery at the next superstep,
// creating the destination vertex if it does not exist yet.
func (g *Graph[ID, V, M]) SendMessage(to ID, msg M) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.vertices[to]
	if !ok {
		v = g.addVertexLocked(to, g.cfg.DefaultValue(to))
	}
	v.next = append(v.next, msg)
}

// WakeAll clears every halt vote, forcing all vertices to run in the next
// superstep whether or not they have mail. Used by coordinators at phase
// boundaries.
func (g *Graph[ID, V, M]) WakeAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, v := range g.vertices {
		v.halted = false
	}
}

// step runs one superstep: wake vertices with pending mail, compute every
// active vertex on the worker pool, then rotate inboxes and freeze
// aggregator contributions at the barrier. It returns the number of
// vertices that computed.
func (g *Graph[ID, V, M]) step() (int, error) {
	active := make([]*Vertex[ID, V, M], 0, len(g.order))
	for _, id := range g.order {
		v := g.vertices[id]
		if len(v.inbox) > 0 {
			v.halted = false
		}
		if !v.halted {
			active = append(active, v)
		}
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	work := make(chan *Vertex[ID, V, M])
	for range g.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range work {
				if err := g.cfg.Compute(g, v, v.inbox); err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("superstep %d, vertex %v: %w", g.superstep, v.id, err)
					})
				}
			}
		}()
	}
	for _, v := range active {
		work <- v
	}
	close(work)
	wg.Wait()
	if firstErr != nil {
		return 0, firstErr
	}

	// Barrier: everything sent this round becomes next round's inbox,
	// including mail to vertices created during this step.
	g.mu.Lock()
	pending := 0
	for _, id := range g.order {
		v := g.vertices[id]
		v.inbox = v.next
		v.next = nil
		pending += len(v.inbox)
	}
	g.pending = pending
	g.mu.Unlock()

	for _, agg := range g.aggregators {
		agg.Flush()
	}
	return len(active), nil
}

// done reports whether the computation has terminated: every vertex voted
// to halt and no messages remain in flight.
func (g *Graph[ID, V, M]) done() bool {
	if g.pending > 0 {
		return false
	}
	for _, v := range g.vertices {
		if !v.halted {
			return false
		}
	}
	return true
}

// Vertex is one node of the graph together with its engine bookkeeping.
type Vertex[ID comparable, V, M any] struct {
	id     ID
	value  V
	halted bool
	inbox  []M
	next   []M
}

func (v *Vertex[ID, V, M]) ID() ID {
	return v.id
}

func (v *Vertex[ID, V, M]) Value() V {
	return v.value
}

func (v *Vertex[ID, V, M]) SetValue(value V) {
	v.value = value
}

// VoteToHalt marks the vertex dormant. It stays dormant until a message
// arrives for it or the coordinator forces a wake.
func (v *Vertex[ID, V, M]) VoteToHalt() {
	v.halted = true
}

func (v *Vertex[ID, V, M]) Halted() bool {
	return v.halted
}
