package main

import (
	"fmt"
	"os"
	"strings"
)

// 数据位置：本地目录或mongo的{db}.{col}
type Path struct {
	Dir  string
	DB   string
	Coll string
}

func NewPath(dirOrColl string) (*Path, error) {
	// 检查dirOrColl是否作为目录存在
	if info, err := os.Stat(dirOrColl); err == nil && info.IsDir() {
		return &Path{
			Dir: dirOrColl,
		}, nil
	}
	dbDotColl := strings.TrimSpace(dirOrColl)
	if dbDotColl == "" {
		return nil, fmt.Errorf("data location is empty")
	}
	splitted := strings.Split(dbDotColl, ".")
	if len(splitted) != 2 {
		return nil, fmt.Errorf("dbDotColl is invalid: %s", dbDotColl)
	}
	return &Path{
		DB:   splitted[0],
		Coll: splitted[1],
	}, nil
}

func (p *Path) IsDir() bool {
	return p.Dir != ""
}

func (p *Path) String() string {
	if p.IsDir() {
		return p.Dir
	}
	return p.DB + "." + p.Coll
}
