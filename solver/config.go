package solver

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// 问题数据文件中锥形拥挤参数alpha所在行（1起）
	// 前11行为常数成本模块等使用的其他字段
	CONICAL_ALPHA_LINE = 12
	// 线路数据文件中容量所在列（1起）
	CAPACITY_COLUMN = 3
)

// 从问题数据文件读取锥形拥挤参数alpha
func LoadConicalAlpha(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open problem data: %w", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line == CONICAL_ALPHA_LINE {
			alpha, err := strconv.ParseFloat(strings.TrimSpace(scanner.Text()), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid conical alpha at line %d of %s: %w", CONICAL_ALPHA_LINE, path, err)
			}
			if alpha <= 1 {
				return 0, fmt.Errorf("conical alpha must be greater than 1, got %v", alpha)
			}
			return alpha, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read problem data %s: %w", path, err)
	}
	return 0, fmt.Errorf("problem data %s has fewer than %d lines", path, CONICAL_ALPHA_LINE)
}

// 从线路数据文件读取容量向量
// 首行为表头，其后每行一条线路，容量在第3列，必须为正
func LoadLineCapacities(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transit data: %w", err)
	}
	defer f.Close()
	capacity := make([]float64, 0)
	scanner := bufio.NewScanner(f)
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < CAPACITY_COLUMN {
			return nil, fmt.Errorf("line row %d of %s has %d columns, expected at least %d",
				len(capacity)+1, path, len(fields), CAPACITY_COLUMN)
		}
		c, err := strconv.ParseFloat(fields[CAPACITY_COLUMN-1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid capacity in row %d of %s: %w", len(capacity)+1, path, err)
		}
		if c <= 0 {
			return nil, fmt.Errorf("capacity in row %d of %s must be positive, got %v", len(capacity)+1, path, c)
		}
		capacity = append(capacity, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transit data %s: %w", path, err)
	}
	return capacity, nil
}
