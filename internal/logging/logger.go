package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file inside the logs directory.
const FileName = "promotor.log"

// Logger appends structured lines to .promotor/logs/promotor.log so the
// operator can reconstruct what a run did after the terminal is gone.
// Every line carries the run id of the invocation that wrote it.
type Logger struct {
	*zap.Logger
	RunID string
	file  *os.File
}

// New creates (or reuses) the log file in logDir. verbose lowers the level
// to debug.
func New(logDir string, verbose bool) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)
	runID := uuid.NewString()
	return &Logger{
		Logger: zap.New(core).With(zap.String("run", runID)),
		RunID:  runID,
		file:   f,
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Close flushes and releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = l.Logger.Sync()
	return l.file.Close()
}
