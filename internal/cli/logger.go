package cli

import "go.uber.org/zap"

// newLogger returns a development logger when verbose, a production
// logger otherwise, and a no-op logger if neither can be built.
func newLogger(verbose bool) *zap.Logger {
	build := zap.NewProduction
	if verbose {
		build = zap.NewDevelopment
	}

	logger, err := build()
	if err != nil {
		return zap.NewNop()
	}

	return logger
}
