package main

import (
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"git.fiblab.net/sim/assignment/solver"
)

var (
	benchmarkCount = flag.Int("benchmark.count", 10, "the solve count for benchmark")
)

// 重复执行完整的Frank-Wolfe求解并统计耗时
// 第一次之后的求解从上一次的解热启动
func runBenchmark(fw *solver.FrankWolfe) {
	log.Logger.SetLevel(logrus.WarnLevel)

	start := time.Now()
	for i := 0; i < *benchmarkCount; i++ {
		if _, _, err := fw.Calculate(); err != nil {
			log.Error("benchmark failed, err:", err)
			return
		}
	}
	timeCost := time.Since(start)
	log.Error(
		"benchmark finished", "\n",
		"count:", *benchmarkCount, "\n",
		"time:", timeCost, "\n",
		"avg:", timeCost/time.Duration(*benchmarkCount), "\n",
	)
}
