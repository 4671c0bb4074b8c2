package solver_test

import (
	"errors"
	"testing"

	"git.fiblab.net/sim/assignment/solver"
	"github.com/stretchr/testify/assert"
)

// 常数成本子模型桩：无论成本如何都把全部需求放在第一条弧上
type pinnedSubmodel struct {
	arcs []solver.Arc
}

func (s *pinnedSubmodel) Calculate() ([]float64, float64, error) {
	return []float64{10, 0}, 1.0, nil
}
func (s *pinnedSubmodel) UpdateCost(cost []float64)  {}
func (s *pinnedSubmodel) UpdateLines(freq []float64) {}
func (s *pinnedSubmodel) Arcs() []solver.Arc         { return s.arcs }

// 常数成本子模型桩：把全部需求放在当前成本较低的弧上
type cheapestSubmodel struct {
	arcs []solver.Arc
	cost []float64
}

func newCheapestSubmodel() *cheapestSubmodel {
	return &cheapestSubmodel{
		arcs: []solver.Arc{{BaseCost: 1.0, Line: 0}, {BaseCost: 1.2, Line: 0}},
		cost: []float64{1.0, 1.2},
	}
}

func (s *cheapestSubmodel) Calculate() ([]float64, float64, error) {
	if s.cost[0] <= s.cost[1] {
		return []float64{10, 0}, 1.0, nil
	}
	return []float64{0, 10}, 1.0, nil
}
func (s *cheapestSubmodel) UpdateCost(cost []float64)  { copy(s.cost, cost) }
func (s *cheapestSubmodel) UpdateLines(freq []float64) {}
func (s *cheapestSubmodel) Arcs() []solver.Arc         { return s.arcs }

type failingSubmodel struct{}

func (s *failingSubmodel) Calculate() ([]float64, float64, error) {
	return nil, 0, errors.New("no strategy")
}
func (s *failingSubmodel) UpdateCost(cost []float64)  {}
func (s *failingSubmodel) UpdateLines(freq []float64) {}
func (s *failingSubmodel) Arcs() []solver.Arc         { return []solver.Arc{{BaseCost: 1, Line: 0}} }

func TestCalculatePinned(t *testing.T) {
	sub := &pinnedSubmodel{arcs: []solver.Arc{
		{BaseCost: 1.0, Line: 0},
		{BaseCost: 2.0, Line: 0},
	}}
	fw, err := solver.New(sub, 2.0, []float64{10}, 0.1, 100)
	assert.NoError(t, err)
	flows, waiting, err := fw.Calculate()
	assert.NoError(t, err)
	// 子模型固定返回同一个解，首轮间隙即为零
	assert.Equal(t, []float64{10, 0}, flows)
	assert.Equal(t, 1.0, waiting)
	assert.Equal(t, 1, fw.Iterations())
	assert.LessOrEqual(t, fw.Gap(), 0.1)
}

func TestCalculateEquilibrium(t *testing.T) {
	fw, err := solver.New(newCheapestSubmodel(), 2.0, []float64{10}, 0.1, 100)
	assert.NoError(t, err)
	flows, waiting, err := fw.Calculate()
	assert.NoError(t, err)
	// 收敛到两弧成本相近的均衡分配
	assert.LessOrEqual(t, fw.Gap(), 0.1)
	assert.Less(t, fw.Iterations(), 100)
	assert.InDelta(t, 10.0, flows[0]+flows[1], 1e-9)
	assert.Greater(t, flows[0], 0.0)
	assert.Greater(t, flows[1], 0.0)
	assert.Equal(t, 1.0, waiting)
}

func TestCalculateGapMonotone(t *testing.T) {
	// 迭代上限逐步放宽，最终间隙单调不增
	prev := 0.0
	for k := 1; k <= 5; k++ {
		fw, err := solver.New(newCheapestSubmodel(), 2.0, []float64{10}, 1e-3, k)
		assert.NoError(t, err)
		_, _, err = fw.Calculate()
		assert.NoError(t, err)
		if k > 1 {
			assert.LessOrEqual(t, fw.Gap(), prev+1e-9)
		}
		prev = fw.Gap()
	}
}

func TestCalculateIterationLimit(t *testing.T) {
	fw, err := solver.New(newCheapestSubmodel(), 2.0, []float64{10}, 0.1, 1)
	assert.NoError(t, err)
	// 达到迭代上限不是错误，返回当前解
	flows, _, err := fw.Calculate()
	assert.NoError(t, err)
	assert.Equal(t, 1, fw.Iterations())
	assert.Greater(t, fw.Gap(), 0.1)
	assert.InDelta(t, 10.0, flows[0]+flows[1], 1e-9)
}

func TestCalculateIdempotent(t *testing.T) {
	fw, err := solver.New(newCheapestSubmodel(), 2.0, []float64{10}, 0.1, 100)
	assert.NoError(t, err)
	flows1, _, err := fw.Calculate()
	assert.NoError(t, err)
	// 再次求解从上一次的成本出发，得到同一均衡
	flows2, _, err := fw.Calculate()
	assert.NoError(t, err)
	assert.LessOrEqual(t, fw.Gap(), 0.1)
	assert.InDelta(t, flows1[0], flows2[0], 0.5)
	assert.InDelta(t, flows1[1], flows2[1], 0.5)
}

func TestCalculateSubmodelError(t *testing.T) {
	_, err := solver.New(&failingSubmodel{}, 2.0, []float64{10}, 0.1, 100)
	assert.Error(t, err)
}

func TestNewErrors(t *testing.T) {
	sub := newCheapestSubmodel()
	// alpha必须大于1
	_, err := solver.New(sub, 1.0, []float64{10}, 0.1, 100)
	assert.Error(t, err)
	// 容量必须为正
	_, err = solver.New(sub, 2.0, []float64{0}, 0.1, 100)
	assert.Error(t, err)
	// 弧引用的线路必须在容量向量范围内
	_, err = solver.New(sub, 2.0, []float64{}, 0.1, 100)
	assert.Error(t, err)
	// 阈值与迭代上限必须为正
	_, err = solver.New(sub, 2.0, []float64{10}, 0, 100)
	assert.Error(t, err)
	_, err = solver.New(sub, 2.0, []float64{10}, 0.1, 0)
	assert.Error(t, err)
}

func TestUpdateLines(t *testing.T) {
	fw, err := solver.New(newCheapestSubmodel(), 2.0, []float64{10}, 0.1, 100)
	assert.NoError(t, err)
	_, _, err = fw.Calculate()
	assert.NoError(t, err)

	// 容量向量长度必须与线路数一致
	assert.Error(t, fw.UpdateLines([]float64{2.0}, []float64{10, 10}))
	// 新容量必须为正
	assert.Error(t, fw.UpdateLines([]float64{2.0}, []float64{-1}))

	assert.NoError(t, fw.UpdateLines([]float64{2.0}, []float64{12}))
	flows, _, err := fw.Calculate()
	assert.NoError(t, err)
	assert.LessOrEqual(t, fw.Gap(), 0.1)
	assert.InDelta(t, 10.0, flows[0]+flows[1], 1e-9)
}
