package solver

import (
	"fmt"
	"math"
)

// 锥形拥挤函数参数
// alpha从配置读入且要求大于1，beta由alpha导出，构造后不再变化
type CongestionParams struct {
	Alpha float64
	Beta  float64
}

func NewCongestionParams(alpha float64) (CongestionParams, error) {
	if alpha <= 1 {
		return CongestionParams{}, fmt.Errorf("conical alpha must be greater than 1, got %v", alpha)
	}
	return CongestionParams{
		Alpha: alpha,
		Beta:  (2*alpha - 1) / (2*alpha - 2),
	}, nil
}

// 非线性弧成本
// 流量为零时等于base，流量逼近容量时急剧上升以体现线路容量约束
// 流量允许超过容量（ratio为负，成本更陡）
func (p CongestionParams) ArcCost(base, flow, capacity float64) float64 {
	ratio := 1 - flow/capacity
	return base * (2 + math.Sqrt((p.Alpha*ratio)*(p.Alpha*ratio)+p.Beta*p.Beta) - p.Alpha*ratio - p.Beta)
}

// 弧成本对流量的导数，用于线搜索中的Newton法
func (p CongestionParams) ArcCostPrime(base, flow, capacity float64) float64 {
	ratio := 1 - flow/capacity
	return base * (-(ratio*p.Alpha*p.Alpha)/(capacity*math.Sqrt((ratio*p.Alpha)*(ratio*p.Alpha)+p.Beta*p.Beta)) + p.Alpha/capacity)
}
