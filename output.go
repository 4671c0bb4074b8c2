package main

import (
	"bufio"
	"fmt"
	"os"
)

// 输出求解结果：首行为总等待时间，其后每行一条弧的流量，顺序与弧表一致
func writeFlows(path string, flows []float64, waiting float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%v\n", waiting)
	for _, v := range flows {
		fmt.Fprintf(w, "%v\n", v)
	}
	return w.Flush()
}
