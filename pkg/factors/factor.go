package factors

// Sender delivers an outgoing factor message to a recipient. The damping
// layer sits behind this interface so the rules themselves stay pure.
type Sender[T comparable] interface {
	Send(value float64, sender, recipient T)
}

// Factor computes the outgoing max-sum messages for one factor-graph node
// from the values received since the previous round.
type Factor[T comparable] interface {
	AddNeighbor(id T)
	Receive(value float64, from T)
	Run()
}

// factorState is the bookkeeping shared by both factor kinds: identity,
// neighbor order, and the last value received per neighbor (zero until a
// message arrives).
type factorState[T comparable] struct {
	identity  T
	op        MaxOperator
	out       Sender[T]
	neighbors []T
	incoming  map[T]float64
}

func newFactorState[T comparable](identity T, op MaxOperator, out Sender[T]) factorState[T] {
	return factorState[T]{
		identity: identity,
		op:       op,
		out:      out,
		incoming: make(map[T]float64),
	}
}

func (f *factorState[T]) AddNeighbor(id T) {
	if _, ok := f.incoming[id]; ok {
		return
	}
	f.neighbors = append(f.neighbors, id)
	f.incoming[id] = 0
}

func (f *factorState[T]) Receive(value float64, from T) {
	f.incoming[from] = value
}

func (f *factorState[T]) send(value float64, to T) {
	f.out.Send(value, f.identity, to)
}
