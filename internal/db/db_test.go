package db

import (
	"testing"

	"gorm.io/gorm/logger"
)

func TestGormLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"silent":  logger.Silent,
		"error":   logger.Error,
		"warn":    logger.Warn,
		"info":    logger.Info,
		"":        logger.Warn,
		"verbose": logger.Warn,
	}
	for in, want := range cases {
		if got := gormLogLevel(in); got != want {
			t.Errorf("gormLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
