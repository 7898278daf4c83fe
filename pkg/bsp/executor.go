package bsp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ExecutorCallbacks let a coordinator observe barrier boundaries. PreStep
// runs before the compute pass of a superstep; PostStep runs after the
// barrier, while Superstep() still reports the round that just finished.
// Either callback may return an error to abort the run.
type ExecutorCallbacks[ID comparable, V, M any] struct {
	PreStep  func(ctx context.Context, g *Graph[ID, V, M]) error
	PostStep func(ctx context.Context, g *Graph[ID, V, M], activeInStep int) error
}

// Executor drives a graph superstep by superstep until every vertex has
// voted to halt and no messages remain in flight.
type Executor[ID comparable, V, M any] struct {
	id  string
	g   *Graph[ID, V, M]
	cb  ExecutorCallbacks[ID, V, M]
	log *slog.Logger
}

func NewExecutor[ID comparable, V, M any](g *Graph[ID, V, M], cb ExecutorCallbacks[ID, V, M], log *slog.Logger) *Executor[ID, V, M] {
	if log == nil {
		log = slog.Default()
	}
	id := uuid.NewString()
	return &Executor[ID, V, M]{
		id:  id,
		g:   g,
		cb:  cb,
		log: log.With(slog.String("run_id", id)),
	}
}

// ID returns the unique identifier assigned to this run.
func (e *Executor[ID, V, M]) ID() string {
	return e.id
}

// Graph returns the graph this executor drives.
func (e *Executor[ID, V, M]) Graph() *Graph[ID, V, M] {
	return e.g
}

// RunToCompletion executes supersteps until the computation terminates or
// the context is cancelled.
func (e *Executor[ID, V, M]) RunToCompletion(ctx context.Context) error {
	e.log.Info("starting run", slog.Int("vertices", len(e.g.VertexIDs())))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if e.cb.PreStep != nil {
			if err := e.cb.PreStep(ctx, e.g); err != nil {
				return err
			}
		}

		active, err := e.g.step()
		if err != nil {
			return err
		}

		if e.cb.PostStep != nil {
			if err := e.cb.PostStep(ctx, e.g, active); err != nil {
				return err
			}
		}

		e.log.Debug("superstep finished",
			slog.Int("superstep", e.g.superstep),
			slog.Int("active", active),
			slog.Int("pending_messages", e.g.pending),
		)

		done := e.g.done()
		e.g.superstep++
		if done {
			break
		}
	}
	e.log.Info("run complete", slog.Int("supersteps", e.g.superstep))
	return nil
}
