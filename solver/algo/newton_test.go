package algo_test

import (
	"math"
	"testing"

	"git.fiblab.net/sim/assignment/solver/algo"
	"github.com/stretchr/testify/assert"
)

func TestNewtonRootQuadratic(t *testing.T) {
	// f(x) = x^2 - 4，根为±2
	f := func(x float64) float64 { return x*x - 4 }
	fprime := func(x float64) float64 { return 2 * x }

	res := algo.NewtonRoot(f, fprime, 3.0)
	assert.True(t, res.Converged)
	assert.InDelta(t, 2.0, res.Root, 1e-7)

	res = algo.NewtonRoot(f, fprime, -1.0)
	assert.True(t, res.Converged)
	assert.InDelta(t, -2.0, res.Root, 1e-7)
}

func TestNewtonRootLinear(t *testing.T) {
	f := func(x float64) float64 { return 3*x - 6 }
	fprime := func(x float64) float64 { return 3 }

	// 线性函数一步收敛
	res := algo.NewtonRoot(f, fprime, 100.0)
	assert.True(t, res.Converged)
	assert.InDelta(t, 2.0, res.Root, 1e-12)
	assert.Equal(t, 1, res.Iterations)
}

func TestNewtonRootZeroDerivative(t *testing.T) {
	// 导数恒为零，无法迭代
	f := func(x float64) float64 { return 1.0 }
	fprime := func(x float64) float64 { return 0.0 }

	res := algo.NewtonRoot(f, fprime, 1.0)
	assert.False(t, res.Converged)
	assert.Equal(t, 0, res.Iterations)
}

func TestNewtonRootDiverge(t *testing.T) {
	// 导数极小导致迭代值发散到Inf
	f := func(x float64) float64 { return 1 + x*x }
	fprime := func(x float64) float64 { return 2 * x }

	res := algo.NewtonRoot(f, fprime, 1e300)
	assert.False(t, res.Converged)
	assert.False(t, math.IsNaN(res.Root))
}

func TestNewtonRootExact(t *testing.T) {
	// 初值即为根
	f := func(x float64) float64 { return x }
	fprime := func(x float64) float64 { return 1 }

	res := algo.NewtonRoot(f, fprime, 0.0)
	assert.True(t, res.Converged)
	assert.Equal(t, 0.0, res.Root)
	assert.Equal(t, 0, res.Iterations)
}
