package strategy

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// 线路数据文件中频率所在列（1起），第3列为容量，由求解器另行读取
	FREQUENCY_COLUMN = 2

	mongoTimeout = 10 * time.Second
)

// 从线路数据文件读取频率向量
// 首行为表头，其后每行一条线路，频率在第2列，必须为正
func LoadLineFrequencies(path string) ([]float64, error) {
	rows, err := loadRows(path, FREQUENCY_COLUMN)
	if err != nil {
		return nil, err
	}
	freq := make([]float64, len(rows))
	for i, fields := range rows {
		f, err := strconv.ParseFloat(fields[FREQUENCY_COLUMN-1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency in row %d of %s: %w", i+1, path, err)
		}
		freq[i] = f
	}
	return freq, nil
}

// 从弧数据文件读取弧表
// 首行为表头，其后每行一条弧：from to line basecost
func LoadArcs(path string) ([]Arc, error) {
	rows, err := loadRows(path, 4)
	if err != nil {
		return nil, err
	}
	arcs := make([]Arc, len(rows))
	for i, fields := range rows {
		from, err1 := strconv.Atoi(fields[0])
		to, err2 := strconv.Atoi(fields[1])
		line, err3 := strconv.Atoi(fields[2])
		base, err4 := strconv.ParseFloat(fields[3], 64)
		for _, err := range []error{err1, err2, err3, err4} {
			if err != nil {
				return nil, fmt.Errorf("invalid arc in row %d of %s: %w", i+1, path, err)
			}
		}
		arcs[i] = Arc{From: from, To: to, Line: line, Base: base}
	}
	return arcs, nil
}

// 从需求数据文件读取OD需求
// 首行为表头，其后每行一条需求：origin dest volume
func LoadDemands(path string) ([]Demand, error) {
	rows, err := loadRows(path, 3)
	if err != nil {
		return nil, err
	}
	demands := make([]Demand, len(rows))
	for i, fields := range rows {
		origin, err1 := strconv.Atoi(fields[0])
		dest, err2 := strconv.Atoi(fields[1])
		volume, err3 := strconv.ParseFloat(fields[2], 64)
		for _, err := range []error{err1, err2, err3} {
			if err != nil {
				return nil, fmt.Errorf("invalid demand in row %d of %s: %w", i+1, path, err)
			}
		}
		demands[i] = Demand{Origin: origin, Dest: dest, Volume: volume}
	}
	return demands, nil
}

// 读取表格文件：跳过表头与空行，检查最少列数
func loadRows(path string, minColumns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	rows := make([][]string, 0)
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
		if len(fields) < minColumns {
			return nil, fmt.Errorf("row %d of %s has %d columns, expected at least %d",
				len(rows)+1, path, len(fields), minColumns)
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

// 由弧表与需求推算节点数（最大下标+1）
func countNodes(arcs []Arc, demands []Demand) int {
	numNodes := 0
	for _, a := range arcs {
		if a.From >= numNodes {
			numNodes = a.From + 1
		}
		if a.To >= numNodes {
			numNodes = a.To + 1
		}
	}
	for _, d := range demands {
		if d.Origin >= numNodes {
			numNodes = d.Origin + 1
		}
		if d.Dest >= numNodes {
			numNodes = d.Dest + 1
		}
	}
	return numNodes
}

// 由数据文件构造网络
func NewNetworkFromFiles(transitPath, arcPath, demandPath string, cleanupEpsilon float64) (*Network, error) {
	freq, err := LoadLineFrequencies(transitPath)
	if err != nil {
		return nil, err
	}
	arcs, err := LoadArcs(arcPath)
	if err != nil {
		return nil, err
	}
	demands, err := LoadDemands(demandPath)
	if err != nil {
		return nil, err
	}
	return NewNetwork(countNodes(arcs, demands), arcs, freq, demands, cleanupEpsilon)
}

func getFloat64(x interface{}) (float64, error) {
	switch x := x.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("wrong number: %v", x)
	}
}

func getInt(x interface{}) (int, error) {
	switch x := x.(type) {
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	default:
		return 0, fmt.Errorf("wrong integer: %v", x)
	}
}

// 由MongoDB集合构造网络
// 文档格式为{class: "line"|"arc"|"demand", data: {...}}
// 额外返回线路容量向量（data.capacity字段）
func NewNetworkFromMongo(uri, db, coll string, cleanupEpsilon float64) (*Network, []float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	defer client.Disconnect(context.Background())
	col := client.Database(db).Collection(coll)

	log.Infof("get network from database %s.%s", db, coll)
	cur, err := col.Find(ctx, bson.D{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query network collection: %w", err)
	}
	defer cur.Close(ctx)

	type lineData struct {
		freq     float64
		capacity float64
	}
	arcs := make([]Arc, 0)
	demands := make([]Demand, 0)
	lines := make(map[int]lineData)
	for cur.Next(ctx) {
		var result bson.M
		if err := cur.Decode(&result); err != nil {
			return nil, nil, fmt.Errorf("failed to decode network document: %w", err)
		}
		data, ok := result["data"].(primitive.M)
		if !ok {
			return nil, nil, fmt.Errorf("network document has no data field: %v", result)
		}
		switch result["class"] {
		case "line":
			// 线路下标由id字段决定，与文档顺序无关
			id, err0 := getInt(data["id"])
			f, err1 := getFloat64(data["frequency"])
			c, err2 := getFloat64(data["capacity"])
			if err0 != nil || err1 != nil || err2 != nil {
				return nil, nil, fmt.Errorf("invalid line document: %v", data)
			}
			if _, ok := lines[id]; ok {
				return nil, nil, fmt.Errorf("duplicated line id %d", id)
			}
			lines[id] = lineData{freq: f, capacity: c}
		case "arc":
			from, err1 := getInt(data["from"])
			to, err2 := getInt(data["to"])
			line, err3 := getInt(data["line"])
			base, err4 := getFloat64(data["cost"])
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				return nil, nil, fmt.Errorf("invalid arc document: %v", data)
			}
			arcs = append(arcs, Arc{From: from, To: to, Line: line, Base: base})
		case "demand":
			origin, err1 := getInt(data["origin"])
			dest, err2 := getInt(data["dest"])
			volume, err3 := getFloat64(data["volume"])
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, nil, fmt.Errorf("invalid demand document: %v", data)
			}
			demands = append(demands, Demand{Origin: origin, Dest: dest, Volume: volume})
		default:
			return nil, nil, fmt.Errorf("unknown network document class: %v", result["class"])
		}
	}
	if err := cur.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate network collection: %w", err)
	}
	freq := make([]float64, len(lines))
	capacity := make([]float64, len(lines))
	for id, l := range lines {
		if id < 0 || id >= len(lines) {
			return nil, nil, fmt.Errorf("line id %d outside of [0,%d)", id, len(lines))
		}
		freq[id] = l.freq
		capacity[id] = l.capacity
	}
	network, err := NewNetwork(countNodes(arcs, demands), arcs, freq, demands, cleanupEpsilon)
	if err != nil {
		return nil, nil, err
	}
	return network, capacity, nil
}
