package strategy

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "strategy")

// 常数成本最优策略子模型的网络
// 拓扑构造后不变；弧成本与线路频率可被替换，RBMutex保证求解与更新互斥
type Network struct {
	numNodes int
	arcs     []Arc

	inArcs  [][]int // node -> 入弧下标
	outArcs [][]int // node -> 出弧下标

	cost []float64 // 当前弧成本，初始为基础成本
	freq []float64 // 当前线路频率

	// 需求按终点分组，volume按起点下标展开
	dests        []int
	demandByDest map[int][]float64

	// 求解后低于该阈值的流量置零
	cleanupEpsilon float64

	mu *xsync.RBMutex
}

func NewNetwork(numNodes int, arcs []Arc, freq []float64, demands []Demand, cleanupEpsilon float64) (*Network, error) {
	if numNodes <= 0 {
		return nil, fmt.Errorf("network must have at least one node, got %d", numNodes)
	}
	for i, f := range freq {
		if f <= 0 {
			return nil, fmt.Errorf("line %d frequency must be positive, got %v", i, f)
		}
	}
	inArcs := make([][]int, numNodes)
	outArcs := make([][]int, numNodes)
	cost := make([]float64, len(arcs))
	for i, a := range arcs {
		if a.From < 0 || a.From >= numNodes || a.To < 0 || a.To >= numNodes {
			return nil, fmt.Errorf("arc %d endpoints (%d,%d) out of node range [0,%d)", i, a.From, a.To, numNodes)
		}
		if a.From == a.To {
			return nil, fmt.Errorf("arc %d is a self loop at node %d", i, a.From)
		}
		if a.Line < 0 || a.Line >= len(freq) {
			return nil, fmt.Errorf("arc %d refers to line %d outside of %d lines", i, a.Line, len(freq))
		}
		if a.Base < 0 {
			return nil, fmt.Errorf("arc %d base cost must be nonnegative, got %v", i, a.Base)
		}
		inArcs[a.To] = append(inArcs[a.To], i)
		outArcs[a.From] = append(outArcs[a.From], i)
		cost[i] = a.Base
	}
	demandByDest := make(map[int][]float64)
	for i, d := range demands {
		if d.Origin < 0 || d.Origin >= numNodes || d.Dest < 0 || d.Dest >= numNodes {
			return nil, fmt.Errorf("demand %d endpoints (%d,%d) out of node range [0,%d)", i, d.Origin, d.Dest, numNodes)
		}
		if d.Volume < 0 {
			return nil, fmt.Errorf("demand %d volume must be nonnegative, got %v", i, d.Volume)
		}
		if d.Volume == 0 || d.Origin == d.Dest {
			continue
		}
		if _, ok := demandByDest[d.Dest]; !ok {
			demandByDest[d.Dest] = make([]float64, numNodes)
		}
		demandByDest[d.Dest][d.Origin] += d.Volume
	}
	// 终点按下标排序，保证求解过程确定
	dests := make([]int, 0, len(demandByDest))
	for dest := range demandByDest {
		dests = append(dests, dest)
	}
	sort.Ints(dests)
	log.Infof("network built: %d nodes, %d arcs, %d lines, %d destinations",
		numNodes, len(arcs), len(freq), len(dests))
	return &Network{
		numNodes:       numNodes,
		arcs:           arcs,
		inArcs:         inArcs,
		outArcs:        outArcs,
		cost:           cost,
		freq:           freq,
		dests:          dests,
		demandByDest:   demandByDest,
		cleanupEpsilon: cleanupEpsilon,
		mu:             xsync.NewRBMutex(),
	}, nil
}

func (n *Network) NumNodes() int { return n.numNodes }
func (n *Network) NumArcs() int  { return len(n.arcs) }
func (n *Network) NumLines() int { return len(n.freq) }
