package strategy

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/mathutil"
	"git.fiblab.net/sim/assignment/solver"
	"git.fiblab.net/sim/assignment/solver/algo"
)

// 过期堆表项的判定容差
const staleEpsilon = 1e-12

// 求解当前成本与频率下的最优策略分配
// 返回总弧流量向量（对所有终点求和）与总等待时间
// 存在无法到达终点的需求时返回错误
func (n *Network) Calculate() ([]float64, float64, error) {
	token := n.mu.RLock()
	defer n.mu.RUnlock(token)

	flow := make([]float64, len(n.arcs))
	waiting := 0.0
	for _, dest := range n.dests {
		volume := n.demandByDest[dest]
		u, fcomb, attached := n.strategyTo(dest)
		for i, v := range volume {
			if v > 0 && math.IsInf(u[i], 1) {
				return nil, 0, fmt.Errorf("no strategy from node %d to destination %d", i, dest)
			}
		}
		waiting += n.load(dest, u, fcomb, attached, volume, flow)
	}
	// 数值清理：接近零的流量置零
	for i, v := range flow {
		if v < n.cleanupEpsilon {
			flow[i] = 0
		}
	}
	return flow, waiting, nil
}

// 替换弧成本向量，在下一次Calculate生效
func (n *Network) UpdateCost(cost []float64) {
	if len(cost) != len(n.arcs) {
		log.Panicf("cost vector length %d does not match arc count %d", len(cost), len(n.arcs))
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	copy(n.cost, cost)
}

// 替换线路频率向量，在下一次Calculate生效
func (n *Network) UpdateLines(freq []float64) {
	if len(freq) != len(n.freq) {
		log.Panicf("frequency vector length %d does not match line count %d", len(freq), len(n.freq))
	}
	for i, f := range freq {
		if f <= 0 {
			log.Panicf("line %d frequency must be positive, got %v", i, f)
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	copy(n.freq, freq)
}

// 弧表（顺序与流量向量一致）
func (n *Network) Arcs() []solver.Arc {
	arcs := make([]solver.Arc, len(n.arcs))
	for i, a := range n.arcs {
		arcs[i] = solver.Arc{BaseCost: a.Base, Line: a.Line}
	}
	return arcs
}

// 到终点dest的最优策略（Spiess-Florian标号法）
// u为各点到终点的期望成本，fcomb为各点已吸纳弧的组合频率，attached标记入选弧
// 弧按(u[to]+cost)从小到大检验：能改进尾节点标号的弧加入策略
func (n *Network) strategyTo(dest int) (u, fcomb []float64, attached []bool) {
	u = make([]float64, n.numNodes)
	fcomb = make([]float64, n.numNodes)
	for i := range u {
		u[i] = mathutil.INF
	}
	u[dest] = 0
	attached = make([]bool, len(n.arcs))

	pq := make(algo.PriorityQueue, 0, len(n.inArcs[dest]))
	for _, a := range n.inArcs[dest] {
		heap.Push(&pq, &algo.Item{Value: a, Priority: n.cost[a]})
	}
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*algo.Item)
		a := item.Value
		if attached[a] {
			continue
		}
		arc := n.arcs[a]
		key := u[arc.To] + n.cost[a]
		if item.Priority > key+staleEpsilon {
			// 过期表项，堆中已有更小key的同弧表项
			continue
		}
		i := arc.From
		if u[i] <= key {
			continue
		}
		fa := n.freq[arc.Line]
		if math.IsInf(u[i], 1) {
			u[i] = (1 + fa*key) / fa
			fcomb[i] = fa
		} else {
			u[i] = (fcomb[i]*u[i] + fa*key) / (fcomb[i] + fa)
			fcomb[i] += fa
		}
		attached[a] = true
		for _, b := range n.inArcs[i] {
			if !attached[b] {
				heap.Push(&pq, &algo.Item{Value: b, Priority: u[i] + n.cost[b]})
			}
		}
	}
	return
}

// 将到dest的需求沿最优策略加载到弧流量上
// 按标号从大到小处理节点，节点流量按频率比例分摊到入选出弧
// 返回总等待时间（各节点流量除以组合频率之和）
func (n *Network) load(dest int, u, fcomb []float64, attached []bool, volume, flow []float64) float64 {
	order := make([]int, 0, n.numNodes)
	for i := 0; i < n.numNodes; i++ {
		if i != dest && !math.IsInf(u[i], 1) {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		return u[order[a]] > u[order[b]]
	})

	v := make([]float64, n.numNodes)
	copy(v, volume)
	waiting := 0.0
	for _, i := range order {
		if v[i] == 0 {
			continue
		}
		waiting += v[i] / fcomb[i]
		for _, a := range n.outArcs[i] {
			if !attached[a] {
				continue
			}
			share := v[i] * n.freq[n.arcs[a].Line] / fcomb[i]
			flow[a] += share
			v[n.arcs[a].To] += share
		}
	}
	return waiting
}
