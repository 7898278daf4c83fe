// Package ap implements affinity propagation clustering as a
// bulk-synchronous message-passing computation over a bipartite factor
// graph. Each data point contributes a ROW vertex (its similarity weights
// and exemplar choice) and a COLUMN vertex (exemplar consistency for the
// points that might follow it); the two sides exchange responsibility and
// availability messages for a fixed number of supersteps, then columns
// elect exemplars and rows assign themselves to one.
package ap

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/distributed-affinity/pkg/bsp"
	"github.com/distributed-affinity/pkg/crdt"
	"github.com/distributed-affinity/pkg/factors"
	"github.com/distributed-affinity/pkg/graph"
)

const (
	aggNumRows    = "nRows"
	aggNumColumns = "nColumns"
	aggExemplars  = "exemplars"
)

type (
	Graph  = bsp.Graph[graph.VertexID, *graph.VertexValue, graph.Message]
	Vertex = bsp.Vertex[graph.VertexID, *graph.VertexValue, graph.Message]
)

var maxOperator factors.MaxOperator = factors.Maximize{}

// Computation holds the per-run parameters shared by every vertex.
type Computation struct {
	maxIterations int
	damping       float64
	log           *slog.Logger
}

func NewComputation(maxIterations int, damping float64, log *slog.Logger) *Computation {
	if log == nil {
		log = slog.Default()
	}
	return &Computation{
		maxIterations: maxIterations,
		damping:       damping,
		log:           log,
	}
}

// Compute dispatches on the current phase. It is the bsp.ComputeFunc for
// the whole run.
func (c *Computation) Compute(g *Graph, v *Vertex, msgs []graph.Message) error {
	switch PhaseAt(g.Superstep(), c.maxIterations) {
	case PhaseInitRows:
		return c.initRows(g, v)
	case PhaseInitColumns:
		c.initColumns(g, v, msgs)
	case PhaseIterate:
		return c.iterate(g, v, msgs)
	case PhaseElectExemplars:
		c.electExemplars(g, v, msgs)
	default:
		c.assignClusters(g, v)
	}
	return nil
}

// initRows seeds the graph from the similarity weights: every row announces
// itself to each of its columns with a zero message, creating the COLUMN
// vertices lazily, and contributes the matrix dimensions to the aggregators
// the coordinator checks after this superstep.
func (c *Computation) initRows(g *Graph, v *Vertex) error {
	id := v.ID()
	if id.Role != graph.RoleRow {
		return fmt.Errorf("vertex %s present before initialization: %w", id, ErrUnknownRole)
	}

	val := v.Value()
	var maxColumn int64
	for _, col := range val.Weights.Keys() {
		if col.Index > maxColumn {
			maxColumn = col.Index
		}
		val.LastMessages.Put(col, 0)
		g.SendMessage(col, graph.Message{From: id, Value: 0})
	}
	g.Aggregator(aggNumRows).Aggregate(id.Index)
	g.Aggregator(aggNumColumns).Aggregate(maxColumn)
	return nil
}

// initColumns has each freshly created column learn its neighbor set from
// the announcements and reply with a neutral zero, so both sides enter the
// first iteration with a complete edge list and all-zero message history.
func (c *Computation) initColumns(g *Graph, v *Vertex, msgs []graph.Message) {
	id := v.ID()
	if id.Role != graph.RoleColumn {
		return
	}
	val := v.Value()
	for _, msg := range msgs {
		val.LastMessages.Put(msg.From, 0)
		g.SendMessage(msg.From, graph.Message{From: id, Value: 0})
	}
}

// iterate runs one belief-propagation round: the vertex rebuilds its factor
// from the recorded neighbor list, feeds it this superstep's messages and
// emits the damped updates.
func (c *Computation) iterate(g *Graph, v *Vertex, msgs []graph.Message) error {
	id := v.ID()
	val := v.Value()
	out := &dampedRelayer{g: g, damping: c.damping, last: val.LastMessages}

	var factor factors.Factor[graph.VertexID]
	switch id.Role {
	case graph.RoleRow:
		row := factors.NewRowFactor(id, maxOperator, out)
		for _, n := range val.LastMessages.Keys() {
			row.AddNeighbor(n)
			if weight, ok := val.Weights.Get(n); ok {
				row.SetPotential(n, weight)
			}
		}
		factor = row
	case graph.RoleColumn:
		column := factors.NewColumnFactor(id, graph.RowID(id.Index), maxOperator, out)
		for _, n := range val.LastMessages.Keys() {
			column.AddNeighbor(n)
		}
		factor = column
	default:
		return fmt.Errorf("vertex %s: %w", id, ErrUnknownRole)
	}

	for _, msg := range msgs {
		factor.Receive(msg.Value, msg.From)
	}
	factor.Run()
	return nil
}

// electExemplars closes the iteration phase. Each column combines the final
// responsibility from its own row with the availability it last sent back
// and declares itself an exemplar when the sum is non-negative. Every
// vertex votes to halt here; the coordinator wakes them all for the
// assignment superstep.
func (c *Computation) electExemplars(g *Graph, v *Vertex, msgs []graph.Message) {
	defer v.VoteToHalt()

	id := v.ID()
	if id.Role != graph.RoleColumn {
		return
	}
	diagonal := graph.RowID(id.Index)
	for _, msg := range msgs {
		if msg.From != diagonal {
			continue
		}
		last, _ := v.Value().LastMessages.Get(diagonal)
		belief := msg.Value + last
		if belief >= 0 {
			g.Aggregator(aggExemplars).Aggregate(id.Index)
			c.log.Debug("exemplar elected",
				slog.Int64("index", id.Index),
				slog.Float64("belief", belief),
			)
		} else {
			c.log.Debug("exemplar rejected",
				slog.Int64("index", id.Index),
				slog.Float64("belief", belief),
			)
		}
	}
}

// assignClusters is the terminal phase: a row that is itself an exemplar
// follows itself, anyone else follows the exemplar with the highest
// recorded similarity, and a row with no weight toward any exemplar is left
// unassigned. Ties break toward the lowest index because the frozen set
// iterates in ascending order and only a strictly better weight wins.
func (c *Computation) assignClusters(g *Graph, v *Vertex) {
	defer v.VoteToHalt()

	id := v.ID()
	if id.Role != graph.RoleRow {
		return
	}
	val := v.Value()
	exemplars := g.Aggregator(aggExemplars).Get().(*crdt.ExemplarSet)
	if exemplars.Contains(id.Index) {
		val.Exemplar = id.Index
		return
	}

	best := graph.NoExemplar
	bestWeight := math.Inf(-1)
	for _, exemplar := range exemplars.Values() {
		weight, ok := val.Weights.Get(graph.ColumnID(exemplar))
		if !ok {
			continue
		}
		if weight > bestWeight {
			bestWeight = weight
			best = exemplar
		}
	}
	val.Exemplar = best
}
