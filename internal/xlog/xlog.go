// Package xlog owns the single structured logger shared by the CLI and
// the watch daemon, the way pdfcpu's internal packages share one
// *zap.SugaredLogger rather than constructing loggers ad hoc.
package xlog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop().Sugar()
)

// Init installs the process-wide logger. debug=true switches to a
// development encoder config with caller info and debug-level output;
// otherwise a production JSON encoder at info level is used.
func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	mu.Lock()
	log = l.Sugar()
	mu.Unlock()
	return nil
}

// L returns the current process-wide logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Sync flushes any buffered log entries. Safe to call even if Init was
// never called.
func Sync() {
	_ = L().Sync()
}
