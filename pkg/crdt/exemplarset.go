package crdt

import "sort"

// ExemplarSet is a grow-only set of elected exemplar indices. Union is the
// only combining operation, so merges are associative, commutative and
// idempotent and the result is independent of contribution order.
type ExemplarSet struct {
	members map[int64]struct{}
}

func NewExemplarSet() *ExemplarSet {
	return &ExemplarSet{
		members: make(map[int64]struct{}),
	}
}

func (s *ExemplarSet) Add(index int64) {
	s.members[index] = struct{}{}
}

func (s *ExemplarSet) Contains(index int64) bool {
	_, ok := s.members[index]
	return ok
}

func (s *ExemplarSet) Merge(other *ExemplarSet) {
	for index := range other.members {
		s.members[index] = struct{}{}
	}
}

func (s *ExemplarSet) Len() int {
	return len(s.members)
}

// Values returns the members in ascending order, which is the iteration
// order every consumer of the frozen set must use.
func (s *ExemplarSet) Values() []int64 {
	values := make([]int64, 0, len(s.members))
	for index := range s.members {
		values = append(values, index)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

func (s *ExemplarSet) Clone() *ExemplarSet {
	clone := NewExemplarSet()
	clone.Merge(s)
	return clone
}
