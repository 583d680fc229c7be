package solver

// Status indicates the terminal condition of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusFailed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Solution contains the results from solving a model.
type Solution struct {
	// Status indicates the outcome of the solve.
	Status Status

	// Objective is the value of the objective function at the solution.
	// Only meaningful when Status is StatusOptimal.
	Objective float64

	values []float64
}

// IsOptimal returns true if a minimizing feasible solution was found.
func (s *Solution) IsOptimal() bool {
	return s.Status == StatusOptimal
}

// Value returns the solved value of a variable. Returns 0 if the id is out
// of range.
func (s *Solution) Value(id VarID) float64 {
	if int(id) < 0 || int(id) >= len(s.values) {
		return 0
	}
	return s.values[id]
}
