package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve_SimpleMinimization(t *testing.T) {
	// min 2x + 3y  s.t.  x + y >= 10
	m := NewModel()
	x := m.AddVariable("x", math.Inf(1))
	y := m.AddVariable("y", math.Inf(1))
	m.SetObjectiveCoefficient(x, 2)
	m.SetObjectiveCoefficient(y, 3)
	m.AddConstraint("cover", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}, {Var: y, Coefficient: 1}}, 10)

	sol, err := m.Solve()
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 20, sol.Objective, 1e-6)
	assert.InDelta(t, 10, sol.Value(x), 1e-6)
	assert.InDelta(t, 0, sol.Value(y), 1e-6)
}

func TestSolve_UpperBoundBinds(t *testing.T) {
	// min 1x + 5y  s.t.  x + y >= 10, x <= 4
	m := NewModel()
	x := m.AddVariable("x", 4)
	y := m.AddVariable("y", math.Inf(1))
	m.SetObjectiveCoefficient(x, 1)
	m.SetObjectiveCoefficient(y, 5)
	m.AddConstraint("cover", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}, {Var: y, Coefficient: 1}}, 10)

	sol, err := m.Solve()
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 4, sol.Value(x), 1e-6)
	assert.InDelta(t, 6, sol.Value(y), 1e-6)
	assert.InDelta(t, 34, sol.Objective, 1e-6)
}

func TestSolve_EqualityConstraint(t *testing.T) {
	// min x + y  s.t.  x - y == 0, x + y >= 8
	m := NewModel()
	x := m.AddVariable("x", math.Inf(1))
	y := m.AddVariable("y", math.Inf(1))
	m.SetObjectiveCoefficient(x, 1)
	m.SetObjectiveCoefficient(y, 1)
	m.AddConstraint("balance", SenseEqual, []Term{{Var: x, Coefficient: 1}, {Var: y, Coefficient: -1}}, 0)
	m.AddConstraint("cover", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}, {Var: y, Coefficient: 1}}, 8)

	sol, err := m.Solve()
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 4, sol.Value(x), 1e-6)
	assert.InDelta(t, 4, sol.Value(y), 1e-6)
}

func TestSolve_Infeasible(t *testing.T) {
	// x <= 5 but x >= 10
	m := NewModel()
	x := m.AddVariable("x", 5)
	m.SetObjectiveCoefficient(x, 1)
	m.AddConstraint("impossible", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}}, 10)

	sol, err := m.Solve()
	require.NoError(t, err, "infeasibility is a status, not an error")
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.False(t, sol.IsOptimal())
}

func TestSolve_Unbounded(t *testing.T) {
	// min -x with x unbounded above
	m := NewModel()
	x := m.AddVariable("x", math.Inf(1))
	m.SetObjectiveCoefficient(x, -1)
	m.AddConstraint("floor", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}}, 1)

	sol, err := m.Solve()
	require.NoError(t, err)
	assert.Equal(t, StatusUnbounded, sol.Status)
}

func TestSolve_EmptyModelIsOptimal(t *testing.T) {
	m := NewModel()

	sol, err := m.Solve()
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, sol.Status)
	assert.Zero(t, sol.Objective)
}

func TestSolve_EmptyConstraints(t *testing.T) {
	t.Run("satisfied empty rows are dropped", func(t *testing.T) {
		m := NewModel()
		x := m.AddVariable("x", math.Inf(1))
		m.SetObjectiveCoefficient(x, 1)
		m.AddConstraint("noop_eq", SenseEqual, nil, 0)
		m.AddConstraint("noop_ge", SenseGreaterEqual, nil, -1)
		m.AddConstraint("cover", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}}, 3)

		sol, err := m.Solve()
		require.NoError(t, err)
		require.Equal(t, StatusOptimal, sol.Status)
		assert.InDelta(t, 3, sol.Value(x), 1e-6)
	})

	t.Run("unsatisfiable empty inequality is infeasible", func(t *testing.T) {
		// Demand with no inbound lanes reduces to 0 >= qty.
		m := NewModel()
		x := m.AddVariable("x", math.Inf(1))
		m.AddConstraint("demand_nowhere", SenseGreaterEqual, nil, 50)
		m.AddConstraint("cover", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}}, 1)

		sol, err := m.Solve()
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, sol.Status)
	})

	t.Run("unsatisfiable empty equality is infeasible", func(t *testing.T) {
		m := NewModel()
		m.AddVariable("x", math.Inf(1))
		m.AddConstraint("broken", SenseEqual, nil, 7)

		sol, err := m.Solve()
		require.NoError(t, err)
		assert.Equal(t, StatusInfeasible, sol.Status)
	})
}

func TestSolve_UnconstrainedVariables(t *testing.T) {
	t.Run("nonnegative cost fixes at zero", func(t *testing.T) {
		m := NewModel()
		x := m.AddVariable("x", math.Inf(1))
		free := m.AddVariable("free", math.Inf(1))
		m.SetObjectiveCoefficient(x, 1)
		m.SetObjectiveCoefficient(free, 2)
		m.AddConstraint("cover", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}}, 5)

		sol, err := m.Solve()
		require.NoError(t, err)
		require.Equal(t, StatusOptimal, sol.Status)
		assert.Zero(t, sol.Value(free))
		assert.InDelta(t, 5, sol.Objective, 1e-6)
	})

	t.Run("negative cost with finite bound fixes at bound", func(t *testing.T) {
		m := NewModel()
		x := m.AddVariable("x", math.Inf(1))
		bonus := m.AddVariable("bonus", 3)
		m.SetObjectiveCoefficient(x, 1)
		m.SetObjectiveCoefficient(bonus, -2)
		m.AddConstraint("cover", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}}, 5)

		sol, err := m.Solve()
		require.NoError(t, err)
		require.Equal(t, StatusOptimal, sol.Status)
		assert.InDelta(t, 3, sol.Value(bonus), 1e-6)
		assert.InDelta(t, 5-6, sol.Objective, 1e-6)
	})

	t.Run("negative cost unbounded is unbounded", func(t *testing.T) {
		m := NewModel()
		x := m.AddVariable("x", math.Inf(1))
		runaway := m.AddVariable("runaway", math.Inf(1))
		m.SetObjectiveCoefficient(x, 1)
		m.SetObjectiveCoefficient(runaway, -1)
		m.AddConstraint("cover", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}}, 5)

		sol, err := m.Solve()
		require.NoError(t, err)
		assert.Equal(t, StatusUnbounded, sol.Status)
	})
}

func TestSolve_DuplicateTermsAccumulate(t *testing.T) {
	// x appearing twice in one constraint sums coefficients: 2x >= 10.
	m := NewModel()
	x := m.AddVariable("x", math.Inf(1))
	m.SetObjectiveCoefficient(x, 1)
	m.AddConstraint("double", SenseGreaterEqual, []Term{{Var: x, Coefficient: 1}, {Var: x, Coefficient: 1}}, 10)

	sol, err := m.Solve()
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 5, sol.Value(x), 1e-6)
}

func TestSolutionValue_OutOfRange(t *testing.T) {
	sol := &Solution{values: []float64{1.5}}
	assert.Equal(t, 1.5, sol.Value(0))
	assert.Zero(t, sol.Value(-1))
	assert.Zero(t, sol.Value(5))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "infeasible", StatusInfeasible.String())
	assert.Equal(t, "unbounded", StatusUnbounded.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(42).String())
}
