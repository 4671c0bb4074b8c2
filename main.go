package main

import (
	"flag"
	"path/filepath"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"git.fiblab.net/sim/assignment/solver"
	"git.fiblab.net/sim/assignment/strategy"
)

const (
	PROBLEM_DATA_FILE = "Problem_Data.txt"
	TRANSIT_DATA_FILE = "Transitdata.txt"
	ARC_DATA_FILE     = "Arcdata.txt"
	DEMAND_DATA_FILE  = "Demanddata.txt"
)

var (
	// 配置信息
	dataPathStr       = flag.String("data", ".", "network data location [format: {dir} or {db}.{col}]")
	mongoURI          = flag.String("mongo_uri", "", "mongo db uri (required when -data is {db}.{col})")
	problemDataPath   = flag.String("problem-data", "", "problem data file (default {data}/Problem_Data.txt)")
	outputPath        = flag.String("output", "", "output file for the arc flow vector (empty means log only)")
	solverEpsilon     = flag.Float64("solver-epsilon", 0.001, "cleanup epsilon of the constant-cost submodel")
	optimalityEpsilon = flag.Float64("optimality-epsilon", 0.1, "optimality gap threshold of the Frank-Wolfe loop")
	maxIterations     = flag.Int("max-iterations", 100, "iteration cap of the Frank-Wolfe loop")
	logLevel          = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	// 性能测试
	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "", "pprof listening address (empty means disable)")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}

	log = logrus.WithField("module", "assignment")
)

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}

	dataPath, err := NewPath(*dataPathStr)
	if err != nil {
		log.Fatalf("invalid data location: %s", err)
	}

	// 网络与线路数据
	var network *strategy.Network
	var capacity []float64
	if dataPath.IsDir() {
		network, err = strategy.NewNetworkFromFiles(
			filepath.Join(dataPath.Dir, TRANSIT_DATA_FILE),
			filepath.Join(dataPath.Dir, ARC_DATA_FILE),
			filepath.Join(dataPath.Dir, DEMAND_DATA_FILE),
			*solverEpsilon,
		)
		if err != nil {
			log.Fatalf("failed to load network: %s", err)
		}
		capacity, err = solver.LoadLineCapacities(filepath.Join(dataPath.Dir, TRANSIT_DATA_FILE))
		if err != nil {
			log.Fatalf("failed to load line capacities: %s", err)
		}
	} else {
		network, capacity, err = strategy.NewNetworkFromMongo(
			*mongoURI, dataPath.DB, dataPath.Coll, *solverEpsilon)
		if err != nil {
			log.Fatalf("failed to load network: %s", err)
		}
	}

	// 锥形拥挤参数
	problemData := *problemDataPath
	if problemData == "" {
		problemData = filepath.Join(dataPath.Dir, PROBLEM_DATA_FILE)
	}
	alpha, err := solver.LoadConicalAlpha(problemData)
	if err != nil {
		log.Fatalf("failed to load conical alpha: %s", err)
	}

	fw, err := solver.New(network, alpha, capacity, *optimalityEpsilon, *maxIterations)
	if err != nil {
		log.Fatalf("failed to build solver: %s", err)
	}

	if *pprofAddr != "" {
		// 启动pprof
		startHTTPDebugger(*pprofAddr)
	}

	if *benchmark {
		// 性能测试
		runBenchmark(fw)
		return
	}

	flows, waiting, err := fw.Calculate()
	if err != nil {
		log.Fatalf("assignment failed: %s", err)
	}
	log.Infof("assignment finished: %d iterations, gap %v, total flow %v, waiting time %v",
		fw.Iterations(), fw.Gap(), lo.Sum(flows), waiting)
	if fw.Gap() > *optimalityEpsilon {
		log.Warnf("target optimality gap %v not reached", *optimalityEpsilon)
	}
	if *outputPath != "" {
		if err := writeFlows(*outputPath, flows, waiting); err != nil {
			log.Fatalf("failed to write output: %s", err)
		}
		log.Infof("flow vector written to %s", *outputPath)
	}
}
