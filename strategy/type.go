package strategy

// 弧：from->to，属于某条线路
type Arc struct {
	From int
	To   int
	Line int     // 所属线路下标
	Base float64 // 零流量下的基础成本
}

// OD需求
type Demand struct {
	Origin int
	Dest   int
	Volume float64
}
