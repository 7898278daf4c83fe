package ap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/distributed-affinity/pkg/bsp"
)

// Master is the run coordinator. It owns the aggregators, validates the
// matrix shape once the first superstep has reported it, and forces the
// phase-boundary wake between election and assignment.
type Master struct {
	maxIterations int
	log           *slog.Logger
}

func NewMaster(maxIterations int, log *slog.Logger) *Master {
	if log == nil {
		log = slog.Default()
	}
	return &Master{maxIterations: maxIterations, log: log}
}

func (m *Master) Initialize(g *Graph) {
	g.RegisterAggregator(aggNumRows, bsp.NewMaxInt64Aggregator())
	g.RegisterAggregator(aggNumColumns, bsp.NewMaxInt64Aggregator())
	g.RegisterAggregator(aggExemplars, NewExemplarAggregator())
}

// PostStep runs after every barrier, while Superstep still names the round
// that just finished.
func (m *Master) PostStep(ctx context.Context, g *Graph, active int) error {
	switch g.Superstep() {
	case 0:
		nRows := g.Aggregator(aggNumRows).Get().(int64)
		nColumns := g.Aggregator(aggNumColumns).Get().(int64)
		m.log.Info("similarity matrix loaded",
			slog.Int64("rows", nRows),
			slog.Int64("columns", nColumns),
		)
		if nRows != nColumns {
			return fmt.Errorf("%d rows by %d columns: %w", nRows, nColumns, ErrNonSquare)
		}
	case m.maxIterations:
		// Election halts every vertex; wake them all so the rows run the
		// assignment superstep.
		g.WakeAll()
	}
	return nil
}
