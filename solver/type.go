package solver

// 弧的只读信息，顺序与子模型的弧表一致
type Arc struct {
	BaseCost float64 // 零流量下的基础成本
	Line     int     // 所属线路下标
}

// 一个可行解：弧流量向量+总等待时间
type Solution struct {
	Flows   []float64
	Waiting float64
}

// 常数成本子模型契约
// Calculate求解当前配置下的最优分配，可重复调用
// UpdateCost/UpdateLines在下一次Calculate前生效
type Submodel interface {
	Calculate() ([]float64, float64, error)
	UpdateCost(cost []float64)
	UpdateLines(freq []float64)
	Arcs() []Arc
}
