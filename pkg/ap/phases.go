package ap

// Phase is the stage of the computation a vertex executes at a given
// superstep. The schedule is a fixed function of the global superstep and
// the configured iteration count, so every vertex agrees on the phase
// without coordination.
type Phase uint8

const (
	PhaseInitRows Phase = iota
	PhaseInitColumns
	PhaseIterate
	PhaseElectExemplars
	PhaseAssignClusters
)

func (p Phase) String() string {
	switch p {
	case PhaseInitRows:
		return "init-rows"
	case PhaseInitColumns:
		return "init-columns"
	case PhaseIterate:
		return "iterate"
	case PhaseElectExemplars:
		return "elect-exemplars"
	case PhaseAssignClusters:
		return "assign-clusters"
	default:
		return "unknown"
	}
}

// PhaseAt maps a superstep to its phase. The branches are ordered so that
// superstep 1 is always column initialization, even when maxIterations is 1
// and election is skipped entirely.
func PhaseAt(superstep, maxIterations int) Phase {
	switch {
	case superstep == 0:
		return PhaseInitRows
	case superstep == 1:
		return PhaseInitColumns
	case superstep < maxIterations:
		return PhaseIterate
	case superstep == maxIterations:
		return PhaseElectExemplars
	default:
		return PhaseAssignClusters
	}
}
