package factors

// RowFactor is the selector-with-potentials rule: each row chooses exactly
// one column as its exemplar, biased by the similarity potential it holds
// for that column. The message to column c is the negated best weighted
// alternative (excluding c itself) plus c's own potential, which is the
// classic responsibility update.
type RowFactor[T comparable] struct {
	factorState[T]
	potentials map[T]float64
}

func NewRowFactor[T comparable](identity T, op MaxOperator, out Sender[T]) *RowFactor[T] {
	return &RowFactor[T]{
		factorState: newFactorState(identity, op, out),
		potentials:  make(map[T]float64),
	}
}

// SetPotential fixes the static similarity weight added to every value
// that crosses the edge to the given neighbor.
func (f *RowFactor[T]) SetPotential(id T, value float64) {
	f.potentials[id] = value
}

func (f *RowFactor[T]) Run() {
	if len(f.neighbors) == 0 {
		return
	}
	if len(f.neighbors) == 1 {
		// No alternative to exclude: the rule degenerates to the
		// neutral element.
		f.send(0, f.neighbors[0])
		return
	}

	// One pass for the best and second-best weighted incoming value; the
	// second-best is what the best neighbor itself gets to see.
	var best T
	first, second := f.op.WorstValue(), f.op.WorstValue()
	for _, n := range f.neighbors {
		value := f.incoming[n] + f.potentials[n]
		if f.op.Compare(value, first) >= 0 {
			second, first, best = first, value, n
		} else if f.op.Compare(value, second) >= 0 {
			second = value
		}
	}

	for _, n := range f.neighbors {
		alternative := first
		if n == best {
			alternative = second
		}
		f.send(-alternative+f.potentials[n], n)
	}
}
