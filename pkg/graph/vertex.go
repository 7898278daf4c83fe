package graph

import "fmt"

// Role distinguishes the two sides of the bipartite factor graph. Every
// data point appears twice: as the ROW vertex that owns its similarity
// weights and selects an exemplar, and as the COLUMN vertex that enforces
// exemplar consistency for everyone who might follow it.
type Role uint8

const (
	RoleColumn Role = iota
	RoleRow
)

func (r Role) String() string {
	switch r {
	case RoleColumn:
		return "COLUMN"
	case RoleRow:
		return "ROW"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// VertexID identifies a factor-graph node. IDs are totally ordered by role
// first (COLUMN before ROW), then by index.
type VertexID struct {
	Role  Role
	Index int64
}

func RowID(index int64) VertexID {
	return VertexID{Role: RoleRow, Index: index}
}

func ColumnID(index int64) VertexID {
	return VertexID{Role: RoleColumn, Index: index}
}

func (id VertexID) Compare(other VertexID) int {
	if id.Role != other.Role {
		if id.Role < other.Role {
			return -1
		}
		return 1
	}
	switch {
	case id.Index < other.Index:
		return -1
	case id.Index > other.Index:
		return 1
	}
	return 0
}

func (id VertexID) Less(other VertexID) bool {
	return id.Compare(other) < 0
}

func (id VertexID) String() string {
	return fmt.Sprintf("(%s, %d)", id.Role, id.Index)
}

// Message is the single wire shape of the algorithm: one scalar value from
// one factor-graph node to another. Messages sent during superstep s are
// visible to the recipient at superstep s+1 only.
type Message struct {
	From  VertexID
	Value float64
}

// Similarity is one entry of the similarity input: s(Row, Col).
type Similarity struct {
	Row   int64
	Col   int64
	Value float64
}
