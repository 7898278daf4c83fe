package graph

import "sort"

// NoExemplar marks a row that found no exemplar with a recorded weight.
// Data-point indices are 1-based, so the zero value means "not yet
// assigned".
const NoExemplar int64 = -1

// MessageMap is a float-valued map keyed by VertexID with sorted iteration
// order. Both the similarity weights and the last-sent message cache use
// it, so neighbor visit order and assignment tie-breaks are reproducible
// across runs and partitionings.
type MessageMap struct {
	values map[VertexID]float64
	keys   []VertexID
}

func NewMessageMap() *MessageMap {
	return &MessageMap{values: make(map[VertexID]float64)}
}

func (m *MessageMap) Put(id VertexID, value float64) {
	if _, ok := m.values[id]; !ok {
		i := sort.Search(len(m.keys), func(i int) bool { return !m.keys[i].Less(id) })
		m.keys = append(m.keys, VertexID{})
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = id
	}
	m.values[id] = value
}

func (m *MessageMap) Get(id VertexID) (float64, bool) {
	value, ok := m.values[id]
	return value, ok
}

func (m *MessageMap) Contains(id VertexID) bool {
	_, ok := m.values[id]
	return ok
}

func (m *MessageMap) Len() int {
	return len(m.keys)
}

// Keys returns the ids in ascending order.
func (m *MessageMap) Keys() []VertexID {
	keys := make([]VertexID, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// VertexValue is the state owned by exactly one vertex and mutated only by
// that vertex's own computation step.
type VertexValue struct {
	// Weights maps COLUMN neighbors to similarity scores. Populated once
	// from the input, read-only afterwards. Only ROW vertices carry
	// weights.
	Weights *MessageMap
	// LastMessages records the most recently sent value per neighbor and
	// feeds the damping layer. Its key set doubles as the neighbor list
	// when building factors.
	LastMessages *MessageMap
	// Exemplar is the chosen exemplar index, valid only after the
	// terminal cluster-assignment phase.
	Exemplar int64
}

func NewVertexValue() *VertexValue {
	return &VertexValue{
		Weights:      NewMessageMap(),
		LastMessages: NewMessageMap(),
	}
}
