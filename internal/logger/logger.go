package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"polyviz/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides leveled logging (info/warning/error) to stdout/stderr and,
// when a log directory is configured, to per-level files.
type Logger struct {
	sugar *zap.SugaredLogger
	files []*os.File
}

// NewLogger builds a Logger for the configured mode. Debug mode writes
// colored console lines; release mode writes JSON.
func NewLogger(cfg *config.Config) (*Logger, error) {
	encoder := consoleEncoder(true)
	if cfg.LogMode == config.LogModeRelease {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	infoLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel })
	errorLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel })

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), infoLevel),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), errorLevel),
	}

	l := &Logger{}
	if cfg.LogDirectory != "" {
		fileCores, err := l.setupFiles(cfg.LogDirectory)
		if err != nil {
			return nil, err
		}
		cores = append(cores, fileCores...)
	}

	l.sugar = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	return l, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// setupFiles opens info.log, warning.log and error.log for appending, one core each.
func (l *Logger) setupFiles(dir string) ([]zapcore.Core, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	levels := []struct {
		file    string
		enabler zapcore.LevelEnabler
	}{
		{"info.log", zap.LevelEnablerFunc(func(lv zapcore.Level) bool { return lv < zapcore.WarnLevel })},
		{"warning.log", zap.LevelEnablerFunc(func(lv zapcore.Level) bool { return lv == zapcore.WarnLevel })},
		{"error.log", zap.LevelEnablerFunc(func(lv zapcore.Level) bool { return lv >= zapcore.ErrorLevel })},
	}

	encoder := consoleEncoder(false)
	cores := make([]zapcore.Core, 0, len(levels))
	for _, lv := range levels {
		path := filepath.Join(dir, lv.file)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		l.files = append(l.files, file)
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), lv.enabler))
	}

	return cores, nil
}

func consoleEncoder(color bool) zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Close flushes buffered entries and closes the log files.
func (l *Logger) Close() {
	if l.sugar != nil {
		_ = l.sugar.Sync()
	}
	for _, f := range l.files {
		f.Close()
	}
	l.files = nil
}
