package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.Mutex
	log *zap.Logger
)

// Get returns the process logger, building it on first use. FLO2D_DEBUG
// switches to the development encoder.
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log != nil {
		return log
	}
	var err error
	if os.Getenv("FLO2D_DEBUG") != "" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		log = zap.NewNop()
	}
	return log
}

// Set replaces the process logger, mostly for tests.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

func Sync() {
	_ = Get().Sync()
}
