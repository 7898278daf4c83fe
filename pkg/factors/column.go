package factors

// ColumnFactor is the conditioned-deactivation rule: a row may only follow
// column c while row c's own candidacy is viable. The exemplar neighbor is
// the ROW vertex sharing this column's index; a column that never received
// a diagonal similarity simply sees a zero exemplar message.
//
// Message to the exemplar: the summed positive support of every other
// neighbor. Message to anyone else: the exemplar's value plus the positive
// support of the remaining neighbors, capped at zero — the classic
// availability update.
type ColumnFactor[T comparable] struct {
	factorState[T]
	exemplar T
}

func NewColumnFactor[T comparable](identity, exemplar T, op MaxOperator, out Sender[T]) *ColumnFactor[T] {
	return &ColumnFactor[T]{
		factorState: newFactorState(identity, op, out),
		exemplar:    exemplar,
	}
}

func (f *ColumnFactor[T]) Run() {
	sum := 0.0
	for _, n := range f.neighbors {
		if n == f.exemplar {
			continue
		}
		sum += f.op.Max(f.incoming[n], 0)
	}

	exemplarValue := f.incoming[f.exemplar]
	for _, n := range f.neighbors {
		if n == f.exemplar {
			f.send(sum, n)
			continue
		}
		support := sum - f.op.Max(f.incoming[n], 0)
		f.send(f.op.Min(exemplarValue+support, 0), n)
	}
}
