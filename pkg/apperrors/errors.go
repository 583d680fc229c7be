package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDataUnavailable   = errors.New("reference data unavailable")
	ErrModelInfeasible   = errors.New("model is infeasible")
	ErrModelUnbounded    = errors.New("model is unbounded")
	ErrNoOptimalSolution = errors.New("solver did not reach an optimal solution")
	ErrMissingLaneCost   = errors.New("shipment variable has no matching lane cost")
)
