package algo

import "math"

// 根查找结果
type RootResult struct {
	Root       float64
	Converged  bool
	Iterations int
}

// Newton法求f的根，从x0出发，fprime为f的导数
// 不收敛（迭代超限、导数为零、数值发散）时Converged为false，由调用方决定回退策略
func NewtonRoot(f, fprime func(float64) float64, x0 float64) RootResult {
	x := x0
	for i := 0; i < NEWTON_MAX_ITER; i++ {
		fx := f(x)
		if fx == 0 {
			return RootResult{Root: x, Converged: true, Iterations: i}
		}
		dx := fprime(x)
		if dx == 0 || math.IsNaN(dx) || math.IsInf(dx, 0) {
			return RootResult{Root: x, Converged: false, Iterations: i}
		}
		next := x - fx/dx
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return RootResult{Root: x, Converged: false, Iterations: i}
		}
		if math.Abs(next-x) < NEWTON_TOL {
			return RootResult{Root: next, Converged: true, Iterations: i + 1}
		}
		x = next
	}
	return RootResult{Root: x, Converged: false, Iterations: NEWTON_MAX_ITER}
}
