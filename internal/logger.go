package internal

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// NewLogger returns a development logger when verbose, and a no-op
// logger otherwise. Levels are coloured when stderr is a terminal.
func NewLogger(verbose bool) (logger *zap.Logger, err error) {
	if !verbose {
		logger = zap.NewNop()
		return
	}

	config := zap.NewDevelopmentConfig()
	if term.IsTerminal(int(os.Stderr.Fd())) {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err = config.Build()
	return
}
