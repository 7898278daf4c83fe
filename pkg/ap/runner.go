package ap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/distributed-affinity/pkg/bsp"
	"github.com/distributed-affinity/pkg/graph"
)

// Options are the tunables of a single run.
type Options struct {
	// MaxIterations is the superstep at which exemplars are elected;
	// supersteps 2 through MaxIterations-1 run belief propagation.
	MaxIterations int
	// Damping blends each outgoing message with the previous one:
	// damping*old + (1-damping)*new. Zero disables damping.
	Damping float64
	// Workers caps compute parallelism; zero means one worker per CPU.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		MaxIterations: 15,
		Damping:       0.9,
	}
}

func (o Options) validate() error {
	if o.MaxIterations < 1 {
		return fmt.Errorf("max iterations %d, need at least 1", o.MaxIterations)
	}
	if o.Damping < 0 || o.Damping >= 1 {
		return fmt.Errorf("damping %v outside [0, 1)", o.Damping)
	}
	return nil
}

// Runner wires a similarity input into a graph, drives the computation to
// completion and extracts the assignments.
type Runner struct {
	opts Options
	log  *slog.Logger
}

func NewRunner(opts Options, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{opts: opts, log: log}
}

// Run clusters the given similarities and returns the exemplar chosen by
// each row, keyed by row index. Rows that found no exemplar map to
// graph.NoExemplar.
func (r *Runner) Run(ctx context.Context, similarities []graph.Similarity) (map[int64]int64, error) {
	if err := r.opts.validate(); err != nil {
		return nil, err
	}
	if len(similarities) == 0 {
		return nil, ErrEmptyInput
	}

	rows := make(map[int64]*graph.VertexValue)
	for _, s := range similarities {
		val, ok := rows[s.Row]
		if !ok {
			val = graph.NewVertexValue()
			rows[s.Row] = val
		}
		val.Weights.Put(graph.ColumnID(s.Col), s.Value)
	}

	comp := NewComputation(r.opts.MaxIterations, r.opts.Damping, r.log)
	g, err := bsp.NewGraph(bsp.Config[graph.VertexID, *graph.VertexValue, graph.Message]{
		Compute:      comp.Compute,
		DefaultValue: func(graph.VertexID) *graph.VertexValue { return graph.NewVertexValue() },
		Workers:      r.opts.Workers,
	})
	if err != nil {
		return nil, err
	}

	indices := make([]int64, 0, len(rows))
	for index := range rows {
		indices = append(indices, index)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for _, index := range indices {
		g.AddVertex(graph.RowID(index), rows[index])
	}

	master := NewMaster(r.opts.MaxIterations, r.log)
	master.Initialize(g)

	exec := bsp.NewExecutor(g, bsp.ExecutorCallbacks[graph.VertexID, *graph.VertexValue, graph.Message]{
		PostStep: master.PostStep,
	}, r.log)
	if err := exec.RunToCompletion(ctx); err != nil {
		return nil, err
	}

	assignments := make(map[int64]int64, len(rows))
	for _, id := range g.VertexIDs() {
		if id.Role != graph.RoleRow {
			continue
		}
		v, _ := g.Vertex(id)
		assignments[id.Index] = v.Value().Exemplar
	}
	return assignments, nil
}
