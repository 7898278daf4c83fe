package bsp

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	superstep int
	vertex    int
	msgs      []int
}

type trace struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (t *trace) record(superstep, vertex int, msgs []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	copied := make([]int, len(msgs))
	copy(copied, msgs)
	t.deliveries = append(t.deliveries, delivery{superstep: superstep, vertex: vertex, msgs: copied})
}

func (t *trace) to(vertex int) []delivery {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []delivery
	for _, d := range t.deliveries {
		if d.vertex == vertex && len(d.msgs) > 0 {
			out = append(out, d)
		}
	}
	return out
}

func runGraph(t *testing.T, cfg Config[int, int, int], setup func(g *Graph[int, int, int])) *Graph[int, int, int] {
	t.Helper()
	if cfg.DefaultValue == nil {
		cfg.DefaultValue = func(int) int { return 0 }
	}
	g, err := NewGraph(cfg)
	require.NoError(t, err)
	if setup != nil {
		setup(g)
	}
	exec := NewExecutor(g, ExecutorCallbacks[int, int, int]{}, nil)
	require.NoError(t, exec.RunToCompletion(context.Background()))
	return g
}

func TestNewGraphValidatesConfig(t *testing.T) {
	_, err := NewGraph(Config[int, int, int]{DefaultValue: func(int) int { return 0 }})
	assert.ErrorIs(t, err, ErrNilCompute)

	_, err = NewGraph(Config[int, int, int]{
		Compute: func(*Graph[int, int, int], *Vertex[int, int, int], []int) error { return nil },
	})
	assert.ErrorIs(t, err, ErrNilDefaultValue)
}

// A message sent during superstep s is delivered at superstep s+1, exactly
// once.
func TestMessageDeliveredNextSuperstep(t *testing.T) {
	tr := &trace{}
	runGraph(t, Config[int, int, int]{
		Workers: 4,
		Compute: func(g *Graph[int, int, int], v *Vertex[int, int, int], msgs []int) error {
			tr.record(g.Superstep(), v.ID(), msgs)
			if g.Superstep() == 0 && v.ID() == 1 {
				g.SendMessage(2, 99)
			}
			v.VoteToHalt()
			return nil
		},
	}, func(g *Graph[int, int, int]) {
		g.AddVertex(1, 0)
		g.AddVertex(2, 0)
	})

	got := tr.to(2)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].superstep)
	assert.Equal(t, []int{99}, got[0].msgs)
}

// A message to an unknown ID creates the vertex with its default value.
func TestLazyVertexCreation(t *testing.T) {
	g := runGraph(t, Config[int, int, int]{
		DefaultValue: func(id int) int { return id * 10 },
		Compute: func(g *Graph[int, int, int], v *Vertex[int, int, int], msgs []int) error {
			if g.Superstep() == 0 {
				g.SendMessage(7, 1)
			}
			v.VoteToHalt()
			return nil
		},
	}, func(g *Graph[int, int, int]) {
		g.AddVertex(1, 0)
	})

	v, ok := g.Vertex(7)
	require.True(t, ok)
	assert.Equal(t, 70, v.Value())
	assert.Contains(t, g.VertexIDs(), 7)
}

// A halted vertex stays dormant until mail arrives, then computes again.
func TestHaltedVertexWokenByMessage(t *testing.T) {
	tr := &trace{}
	runGraph(t, Config[int, int, int]{
		Compute: func(g *Graph[int, int, int], v *Vertex[int, int, int], msgs []int) error {
			tr.record(g.Superstep(), v.ID(), msgs)
			// Vertex 1 stays awake long enough to send twice; vertex 2
			// halts immediately and relies on mail to wake it.
			if v.ID() == 1 {
				g.SendMessage(2, g.Superstep())
				if g.Superstep() >= 1 {
					v.VoteToHalt()
				}
				return nil
			}
			v.VoteToHalt()
			return nil
		},
	}, func(g *Graph[int, int, int]) {
		g.AddVertex(1, 0)
		g.AddVertex(2, 0)
	})

	got := tr.to(2)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].superstep)
	assert.Equal(t, 2, got[1].superstep)
}

// Aggregator contributions become visible one superstep after they are
// made, and keep the frozen value afterwards.
func TestAggregatorVisibleNextSuperstep(t *testing.T) {
	observed := make(map[int]int64)
	var mu sync.Mutex
	runGraph(t, Config[int, int, int]{
		Compute: func(g *Graph[int, int, int], v *Vertex[int, int, int], msgs []int) error {
			mu.Lock()
			observed[g.Superstep()] = g.Aggregator("max").Get().(int64)
			mu.Unlock()
			if g.Superstep() == 0 {
				g.Aggregator("max").Aggregate(int64(v.ID()))
				g.SendMessage(v.ID(), 0) // keep ourselves alive one more round
			}
			v.VoteToHalt()
			return nil
		},
	}, func(g *Graph[int, int, int]) {
		g.RegisterAggregator("max", NewMaxInt64Aggregator())
		g.AddVertex(3, 0)
		g.AddVertex(8, 0)
	})

	assert.Equal(t, int64(0), observed[0])
	assert.Equal(t, int64(8), observed[1])
}

func TestWakeAllRunsDormantVertices(t *testing.T) {
	tr := &trace{}
	cfg := Config[int, int, int]{
		DefaultValue: func(int) int { return 0 },
		Compute: func(g *Graph[int, int, int], v *Vertex[int, int, int], msgs []int) error {
			tr.record(g.Superstep(), v.ID(), msgs)
			v.VoteToHalt()
			return nil
		},
	}
	g, err := NewGraph(cfg)
	require.NoError(t, err)
	g.AddVertex(1, 0)
	g.AddVertex(2, 0)

	woke := false
	exec := NewExecutor(g, ExecutorCallbacks[int, int, int]{
		PostStep: func(ctx context.Context, g *Graph[int, int, int], active int) error {
			if g.Superstep() == 0 {
				g.WakeAll()
				woke = true
			}
			return nil
		},
	}, nil)
	require.NoError(t, exec.RunToCompletion(context.Background()))
	require.True(t, woke)

	// Both vertices computed at superstep 0 and again at 1 despite halting
	// with no mail.
	count := make(map[int]int)
	for _, d := range tr.deliveries {
		count[d.superstep]++
	}
	assert.Equal(t, 2, count[0])
	assert.Equal(t, 2, count[1])
	assert.Zero(t, count[2])
}

func TestComputeErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	g, err := NewGraph(Config[int, int, int]{
		DefaultValue: func(int) int { return 0 },
		Compute: func(g *Graph[int, int, int], v *Vertex[int, int, int], msgs []int) error {
			return boom
		},
	})
	require.NoError(t, err)
	g.AddVertex(1, 0)

	exec := NewExecutor(g, ExecutorCallbacks[int, int, int]{}, nil)
	assert.ErrorIs(t, exec.RunToCompletion(context.Background()), boom)
}

func TestPostStepErrorAbortsRun(t *testing.T) {
	abort := errors.New("abort")
	g, err := NewGraph(Config[int, int, int]{
		DefaultValue: func(int) int { return 0 },
		Compute: func(g *Graph[int, int, int], v *Vertex[int, int, int], msgs []int) error {
			g.SendMessage(v.ID(), 1)
			return nil
		},
	})
	require.NoError(t, err)
	g.AddVertex(1, 0)

	exec := NewExecutor(g, ExecutorCallbacks[int, int, int]{
		PostStep: func(ctx context.Context, g *Graph[int, int, int], active int) error {
			return abort
		},
	}, nil)
	assert.ErrorIs(t, exec.RunToCompletion(context.Background()), abort)
	assert.Equal(t, 0, g.Superstep())
}

func TestContextCancellationStopsRun(t *testing.T) {
	g, err := NewGraph(Config[int, int, int]{
		DefaultValue: func(int) int { return 0 },
		Compute: func(g *Graph[int, int, int], v *Vertex[int, int, int], msgs []int) error {
			g.SendMessage(v.ID(), 1) // never terminates on its own
			return nil
		},
	})
	require.NoError(t, err)
	g.AddVertex(1, 0)

	ctx, cancel := context.WithCancel(context.Background())
	exec := NewExecutor(g, ExecutorCallbacks[int, int, int]{
		PostStep: func(ctx context.Context, g *Graph[int, int, int], active int) error {
			if g.Superstep() == 3 {
				cancel()
			}
			return nil
		},
	}, nil)
	assert.ErrorIs(t, exec.RunToCompletion(ctx), context.Canceled)
}
