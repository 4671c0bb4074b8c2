package algo

const (
	// Newton法收敛判据：前后两次迭代的差
	// 与scipy.optimize.newton的默认值保持一致
	NEWTON_TOL = 1.48e-8
	// Newton法最大迭代次数
	NEWTON_MAX_ITER = 50
)
