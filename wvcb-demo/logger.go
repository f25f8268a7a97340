package main

import (
	"github.com/hsfzxjy/wvcb/internal/config"
	"go.uber.org/zap"
)

func newLogger(c *config.ConfigStruct) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
