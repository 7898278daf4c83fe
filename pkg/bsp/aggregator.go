package bsp

import "sync"

// Aggregator combines concurrent per-vertex contributions with an
// order-independent operator. Contributions made during superstep s become
// readable from superstep s+1, after Flush runs at the barrier; until then
// Get returns the value frozen at the previous barrier.
type Aggregator interface {
	Aggregate(value any)
	Get() any
	Flush()
}

// MaxInt64Aggregator keeps the running maximum of the contributed values.
type MaxInt64Aggregator struct {
	mu       sync.Mutex
	current  int64
	readable int64
}

func NewMaxInt64Aggregator() *MaxInt64Aggregator {
	return &MaxInt64Aggregator{}
}

func (a *MaxInt64Aggregator) Aggregate(value any) {
	v := value.(int64)
	a.mu.Lock()
	defer a.mu.Unlock()
	if v > a.current {
		a.current = v
	}
}

func (a *MaxInt64Aggregator) Get() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.readable
}

func (a *MaxInt64Aggregator) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current > a.readable {
		a.readable = a.current
	}
}
