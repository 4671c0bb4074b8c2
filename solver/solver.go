package solver

import (
	"fmt"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "solver")

// 非线性成本Spiess-Florian模型的Frank-Wolfe求解器
// 持有常数成本子模型，迭代地用当前流量更新弧成本、求解常数成本子问题、
// 取新旧解的最优凸组合，直至最优性间隙满足要求或达到迭代上限
type FrankWolfe struct {
	sub Submodel

	params   CongestionParams
	capacity []float64 // 线路容量，下标为线路id

	epsilon       float64 // 最优性间隙阈值
	maxIterations int

	cur        Solution
	iterations int     // 上一次Calculate的迭代次数
	gap        float64 // 上一次Calculate结束时的间隙
}

// 构造求解器并以基础成本（零流量）求得初始可行解
func New(sub Submodel, alpha float64, capacity []float64, optimalityEpsilon float64, maxIterations int) (*FrankWolfe, error) {
	params, err := NewCongestionParams(alpha)
	if err != nil {
		return nil, err
	}
	if optimalityEpsilon <= 0 {
		return nil, fmt.Errorf("optimality epsilon must be positive, got %v", optimalityEpsilon)
	}
	if maxIterations <= 0 {
		return nil, fmt.Errorf("max iterations must be positive, got %v", maxIterations)
	}
	if err := checkCapacity(sub.Arcs(), capacity); err != nil {
		return nil, err
	}
	flows, waiting, err := sub.Calculate()
	if err != nil {
		return nil, fmt.Errorf("initial constant-cost solve failed: %w", err)
	}
	if len(flows) != len(sub.Arcs()) {
		return nil, fmt.Errorf("flow vector length %d does not match arc count %d", len(flows), len(sub.Arcs()))
	}
	return &FrankWolfe{
		sub:           sub,
		params:        params,
		capacity:      capacity,
		epsilon:       optimalityEpsilon,
		maxIterations: maxIterations,
		cur:           Solution{Flows: flows, Waiting: waiting},
		gap:           mathutil.INF,
	}, nil
}

func checkCapacity(arcs []Arc, capacity []float64) error {
	for i, c := range capacity {
		if c <= 0 {
			return fmt.Errorf("line %d capacity must be positive, got %v", i, c)
		}
	}
	for i, a := range arcs {
		if a.Line < 0 || a.Line >= len(capacity) {
			return fmt.Errorf("arc %d refers to line %d outside capacity vector of length %d", i, a.Line, len(capacity))
		}
	}
	return nil
}

// 以当前流量重新计算所有弧成本并推入子模型
func (f *FrankWolfe) updateArcCosts() {
	cost := lo.Map(f.sub.Arcs(), func(a Arc, i int) float64 {
		return f.params.ArcCost(a.BaseCost, f.cur.Flows[i], f.capacity[a.Line])
	})
	f.sub.UpdateCost(cost)
}

// 求解非线性成本模型，返回总弧流量向量与总等待时间
// 间隙不超过epsilon时收敛；达到迭代上限不是错误，返回当前最优解
// 子模型求解失败原样向上传播
func (f *FrankWolfe) Calculate() ([]float64, float64, error) {
	f.updateArcCosts()
	flows, waiting, err := f.sub.Calculate()
	if err != nil {
		return nil, 0, err
	}
	f.cur = Solution{Flows: flows, Waiting: waiting}

	iteration := 0
	gap := mathutil.INF
	for gap > f.epsilon && iteration < f.maxIterations {
		iteration++

		// 更新弧成本并求解常数成本子模型
		f.updateArcCosts()
		ccFlows, ccWaiting, err := f.sub.Calculate()
		if err != nil {
			return nil, 0, err
		}

		// 取最优凸组合，间隙在提交新解之前计算
		ls := &lineSearch{
			params:   f.params,
			arcs:     f.sub.Arcs(),
			capacity: f.capacity,
			cur:      f.cur,
			cand:     Solution{Flows: ccFlows, Waiting: ccWaiting},
		}
		next, parameter := ls.optimalStep(iteration)
		gap = ls.gap()
		f.cur = next
		log.Debugf("iteration %d: step %v, gap %v", iteration, parameter, gap)
	}
	f.iterations = iteration
	f.gap = gap
	if gap > f.epsilon {
		log.Warnf("iteration limit %d reached with gap %v above epsilon %v", f.maxIterations, gap, f.epsilon)
	}
	return f.cur.Flows, f.cur.Waiting, nil
}

// 推入新的线路发车频率并替换本地容量向量
// 不重置迭代状态，下一次Calculate从上一次的解热启动
func (f *FrankWolfe) UpdateLines(freq, capacity []float64) error {
	if len(capacity) != len(f.capacity) {
		return fmt.Errorf("capacity vector length %d does not match line count %d", len(capacity), len(f.capacity))
	}
	if err := checkCapacity(f.sub.Arcs(), capacity); err != nil {
		return err
	}
	f.sub.UpdateLines(freq)
	f.capacity = capacity
	return nil
}

// 上一次Calculate结束时的最优性间隙
func (f *FrankWolfe) Gap() float64 { return f.gap }

// 上一次Calculate的迭代次数
func (f *FrankWolfe) Iterations() int { return f.iterations }
