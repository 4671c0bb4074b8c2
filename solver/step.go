package solver

import (
	"git.fiblab.net/sim/assignment/solver/algo"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

const (
	// Newton法求得的根超出此范围视为数值异常，回退MSA
	STEP_SANITY_LOW  = -1.0
	STEP_SANITY_HIGH = 2.0
)

// 一次迭代的线搜索：当前解与常数成本解之间的凸组合
// 仅依赖构造时传入的数据，不修改求解器状态
type lineSearch struct {
	params   CongestionParams
	arcs     []Arc
	capacity []float64
	cur      Solution
	cand     Solution
}

// 目标函数对凸组合参数的一阶导数
// 目标为凸，求最优凸组合即求此导数的根
func (s *lineSearch) objPrime(parameter float64) float64 {
	t := s.cand.Waiting - s.cur.Waiting
	for i, a := range s.arcs {
		flow := (1-parameter)*s.cur.Flows[i] + parameter*s.cand.Flows[i]
		t += (s.cand.Flows[i] - s.cur.Flows[i]) * s.params.ArcCost(a.BaseCost, flow, s.capacity[a.Line])
	}
	return t
}

// 二阶导数，弧成本非降故恒非负
func (s *lineSearch) objPrime2(parameter float64) float64 {
	t := 0.0
	for i, a := range s.arcs {
		d := s.cand.Flows[i] - s.cur.Flows[i]
		flow := (1-parameter)*s.cur.Flows[i] + parameter*s.cand.Flows[i]
		t += d * d * s.params.ArcCostPrime(a.BaseCost, flow, s.capacity[a.Line])
	}
	return t
}

// 求最优凸组合
// Newton法从1.0出发求objPrime的根，根在[0,1]之外时取较近的端点
// 不收敛或根明显异常时回退到MSA参数1/iteration
func (s *lineSearch) optimalStep(iteration int) (Solution, float64) {
	res := algo.NewtonRoot(s.objPrime, s.objPrime2, 1.0)
	var parameter float64
	if res.Converged && res.Root >= STEP_SANITY_LOW && res.Root <= STEP_SANITY_HIGH {
		parameter = lo.Clamp(res.Root, 0.0, 1.0)
	} else {
		parameter = 1.0 / float64(iteration)
	}
	flows := make([]float64, len(s.cur.Flows))
	floats.ScaleTo(flows, 1-parameter, s.cur.Flows)
	floats.AddScaled(flows, parameter, s.cand.Flows)
	return Solution{
		Flows:   flows,
		Waiting: (1-parameter)*s.cur.Waiting + parameter*s.cand.Waiting,
	}, parameter
}

// 最优性间隙上界：当前点向新解方向的方向导数取负
// 必须在提交新解之前计算
func (s *lineSearch) gap() float64 {
	return -s.objPrime(0)
}
