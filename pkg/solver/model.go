// Package solver provides a small linear-programming model container and a
// black-box minimization solve on top of gonum's simplex implementation.
//
// Variables are nonnegative with an optional finite upper bound. Constraints
// are equalities or greater-or-equal inequalities. Solve converts the model
// to the standard form min cᵀx s.t. Ax = b, x ≥ 0 by adding slack and
// surplus columns, then runs the simplex method.
package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// VarID identifies a variable within a Model.
type VarID int

// Sense is the relation between a constraint's left-hand side and its
// right-hand side.
type Sense int

const (
	SenseEqual Sense = iota
	SenseGreaterEqual
)

// Term is one coefficient of a constraint's left-hand side.
type Term struct {
	Var         VarID
	Coefficient float64
}

// Constraint is a labeled linear constraint. The label is carried through
// for diagnosability; it does not affect the solve.
type Constraint struct {
	Name  string
	Sense Sense
	Terms []Term
	RHS   float64
}

type variable struct {
	name  string
	upper float64
	cost  float64
}

// Model is a linear program under construction. It is not safe for
// concurrent use; each optimization run builds its own model.
type Model struct {
	vars        []variable
	constraints []Constraint
	tolerance   float64
}

// NewModel returns an empty minimization model.
func NewModel() *Model {
	return &Model{}
}

// SetTolerance overrides the simplex convergence tolerance. Zero keeps the
// solver's default.
func (m *Model) SetTolerance(tol float64) {
	m.tolerance = tol
}

// AddVariable adds a nonnegative variable bounded above by upper. Use
// math.Inf(1) for an unbounded variable. The returned VarID addresses the
// variable in constraints, objective coefficients, and the solution.
func (m *Model) AddVariable(name string, upper float64) VarID {
	m.vars = append(m.vars, variable{name: name, upper: upper})
	return VarID(len(m.vars) - 1)
}

// SetObjectiveCoefficient sets the minimization cost of a variable.
func (m *Model) SetObjectiveCoefficient(v VarID, cost float64) {
	m.vars[v].cost = cost
}

// AddConstraint adds a labeled constraint. Constraints with no terms are
// legal; they are resolved during preprocessing (trivially satisfied or
// trivially infeasible).
func (m *Model) AddConstraint(name string, sense Sense, terms []Term, rhs float64) {
	m.constraints = append(m.constraints, Constraint{Name: name, Sense: sense, Terms: terms, RHS: rhs})
}

// NumVariables returns the number of variables added so far.
func (m *Model) NumVariables() int {
	return len(m.vars)
}

// NumConstraints returns the number of constraints added so far.
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// VariableName returns the name a variable was registered with.
func (m *Model) VariableName(v VarID) string {
	return m.vars[v].name
}

// Solve minimizes the objective subject to the model's constraints.
//
// Infeasible and unbounded models are expected outcomes: they are reported
// through Solution.Status with a nil error. A non-nil error indicates the
// solve itself broke down (numerical failure, singular basis) and is
// accompanied by StatusFailed.
func (m *Model) Solve() (*Solution, error) {
	sol := &Solution{values: make([]float64, len(m.vars))}

	active, fixedObjective, status := m.preprocess(sol)
	if status != statusUnresolved {
		sol.Status = status
		if status == StatusOptimal {
			sol.Objective = fixedObjective
		}
		return sol, nil
	}

	c, a, b, columns := m.standardForm(active)

	optF, optX, err := lp.Simplex(c, a, b, m.tolerance, nil)
	switch {
	case err == nil:
		sol.Status = StatusOptimal
	case errors.Is(err, lp.ErrInfeasible):
		sol.Status = StatusInfeasible
		return sol, nil
	case errors.Is(err, lp.ErrUnbounded):
		sol.Status = StatusUnbounded
		return sol, nil
	default:
		sol.Status = StatusFailed
		return sol, fmt.Errorf("simplex solve failed: %w", err)
	}

	for col, id := range columns {
		sol.values[id] = optX[col]
	}
	sol.Objective = optF + fixedObjective
	return sol, nil
}

// statusUnresolved marks a model that still needs a simplex solve after
// preprocessing.
const statusUnresolved Status = -1

// preprocess resolves the parts of the model the simplex method cannot
// accept and decides trivial outcomes without a solve.
//
// Empty constraints are checked against their right-hand side: a satisfied
// empty row is dropped, an unsatisfiable one makes the whole model
// infeasible (the zero-capacity-with-demand case surfaces here or in the
// simplex itself, never as a construction error). Variables that appear in
// no surviving constraint would produce all-zero columns, so they are fixed
// at their individually optimal value instead: zero for nonnegative cost,
// their upper bound for negative cost, unbounded below zero cost means the
// model is unbounded.
//
// Returns the variables that still require a solve, the objective
// contribution of fixed variables, and a terminal status (or
// statusUnresolved).
func (m *Model) preprocess(sol *Solution) (active []VarID, fixedObjective float64, status Status) {
	used := make([]bool, len(m.vars))
	for _, con := range m.constraints {
		if len(con.Terms) == 0 {
			switch con.Sense {
			case SenseEqual:
				if math.Abs(con.RHS) > emptyRowTolerance {
					return nil, 0, StatusInfeasible
				}
			case SenseGreaterEqual:
				if con.RHS > emptyRowTolerance {
					return nil, 0, StatusInfeasible
				}
			}
			continue
		}
		for _, t := range con.Terms {
			used[t.Var] = true
		}
	}

	for id, v := range m.vars {
		if used[id] {
			active = append(active, VarID(id))
			continue
		}
		switch {
		case v.cost >= 0:
			sol.values[id] = 0
		case math.IsInf(v.upper, 1):
			return nil, 0, StatusUnbounded
		default:
			sol.values[id] = v.upper
			fixedObjective += v.cost * v.upper
		}
	}

	if len(active) == 0 {
		return nil, fixedObjective, StatusOptimal
	}
	return active, fixedObjective, statusUnresolved
}

// emptyRowTolerance guards empty-constraint feasibility checks against
// floating point dust in aggregated right-hand sides.
const emptyRowTolerance = 1e-9

// standardForm assembles min cᵀx, Ax = b, x ≥ 0 from the active part of
// the model. Inequalities get a surplus column, finite upper bounds get a
// slack row and column. columns maps matrix column index to VarID for the
// original variables.
func (m *Model) standardForm(active []VarID) (c []float64, a *mat.Dense, b []float64, columns []VarID) {
	col := make(map[VarID]int, len(active))
	for i, id := range active {
		col[id] = i
	}

	rows := make([]Constraint, 0, len(m.constraints))
	for _, con := range m.constraints {
		if len(con.Terms) > 0 {
			rows = append(rows, con)
		}
	}

	var bounded []VarID
	for _, id := range active {
		if !math.IsInf(m.vars[id].upper, 1) {
			bounded = append(bounded, id)
		}
	}

	surplus := 0
	for _, con := range rows {
		if con.Sense == SenseGreaterEqual {
			surplus++
		}
	}

	nRows := len(rows) + len(bounded)
	nCols := len(active) + surplus + len(bounded)

	a = mat.NewDense(nRows, nCols, nil)
	b = make([]float64, nRows)
	c = make([]float64, nCols)

	for _, id := range active {
		c[col[id]] = m.vars[id].cost
	}

	next := len(active)
	for i, con := range rows {
		for _, t := range con.Terms {
			a.Set(i, col[t.Var], a.At(i, col[t.Var])+t.Coefficient)
		}
		b[i] = con.RHS
		if con.Sense == SenseGreaterEqual {
			a.Set(i, next, -1)
			next++
		}
	}

	for i, id := range bounded {
		row := len(rows) + i
		a.Set(row, col[id], 1)
		a.Set(row, next, 1)
		next++
		b[row] = m.vars[id].upper
	}

	return c, a, b, active
}
