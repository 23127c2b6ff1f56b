package log

// Application logging on top of zap
// File logger receives everything (DEBUG..ERROR) in a compact "time  LEVEL msg {json}" layout
// Console logger only prints SUCCESS (info) and ERROR lines with color
// Until Setup is called every logger is a no-op, so library code and tests stay quiet

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var (
	Logger        = zap.NewNop()
	consoleLogger = zap.NewNop()
	mu            sync.Mutex
)

// MaxLogFileSize is the size after which app.log is truncated.
const MaxLogFileSize = 50 * 1024 * 1024

// Options controls where and how much is logged.
type Options struct {
	Dir     string // directory for app.log, empty disables the file logger
	Level   string // debug, info, warn, error
	Console bool   // colored SUCCESS/ERROR lines on stderr
}

// Setup builds the file and console loggers. It may be called again to reconfigure.
func Setup(opts Options) error {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	fileLogger := zap.NewNop()
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}

		fileConfig := zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			FunctionKey:    zapcore.OmitKey,
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
			EncodeDuration: zapcore.MillisDurationEncoder,
		}
		core := zapcore.NewCore(
			&fileEncoder{Encoder: zapcore.NewConsoleEncoder(fileConfig)},
			getLogFileWriter(filepath.Join(opts.Dir, "app.log")),
			level,
		)
		fileLogger = zap.New(core)
	}

	console := zap.NewNop()
	if opts.Console {
		consoleConfig := zap.NewDevelopmentConfig()
		consoleConfig.EncoderConfig.EncodeLevel = levelColorEncoder
		consoleConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleConfig.EncoderConfig.EncodeCaller = nil
		consoleConfig.Development = false
		consoleConfig.DisableStacktrace = true
		consoleConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

		var err error
		console, err = consoleConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to build console logger: %w", err)
		}
	}

	mu.Lock()
	Logger = fileLogger
	consoleLogger = console
	mu.Unlock()
	return nil
}

// Sync flushes both loggers.
func Sync() {
	_ = Logger.Sync()
	_ = consoleLogger.Sync()
}

// GenerateRequestID returns a short random id used to correlate request and response lines.
func GenerateRequestID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// LogRequest records an outbound HTTP request (file only).
func LogRequest(requestID, method, url string, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", url),
	}, fields...)
	Logger.Info("HTTP request", all...)
}

// LogResponse records the outcome of an outbound HTTP request.
// Non-2xx responses are also echoed to the console.
func LogResponse(requestID string, statusCode int, durationMs int64, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("request_id", requestID),
		zap.Int("status_code", statusCode),
		zap.Int64("duration_ms", durationMs),
	}, fields...)

	if statusCode >= 200 && statusCode < 300 {
		Logger.Info("HTTP response", all...)
		return
	}

	Logger.Error("HTTP response", all...)
	if url := fieldString(fields, "url"); url != "" {
		consoleLogger.Error(fmt.Sprintf("✗ HTTP request failed [%d] %s", statusCode, url))
	} else {
		consoleLogger.Error(fmt.Sprintf("✗ HTTP request failed [%d]", statusCode))
	}
}

// LogBytes logs a byte count in human form next to the raw value.
func LogBytes(message string, size int64, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.Int64("bytes", size),
		zap.String("size", humanize.Bytes(uint64(size))),
	}, fields...)
	Logger.Info(message, all...)
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

func levelColorEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(colorCyan + "DEBUG" + colorReset)
	case zapcore.InfoLevel:
		enc.AppendString(colorGreen + "SUCCESS" + colorReset)
	case zapcore.WarnLevel:
		enc.AppendString(colorYellow + "WARN" + colorReset)
	case zapcore.ErrorLevel, zapcore.FatalLevel, zapcore.PanicLevel:
		enc.AppendString(colorRed + level.CapitalString() + colorReset)
	default:
		enc.AppendString(colorWhite + level.String() + colorReset)
	}
}

// LogInfo writes to the file logger only.
func LogInfo(message string, fields ...zap.Field) {
	Logger.Info(message, fields...)
}

// LogSuccess writes to the file and prints a green line on the console.
func LogSuccess(message string, fields ...zap.Field) {
	Logger.Info(message, fields...)
	if ms := durationMs(fields); ms > 0 {
		consoleLogger.Info(fmt.Sprintf("✓ %s (%dms)", message, ms))
	} else {
		consoleLogger.Info("✓ " + message)
	}
}

// LogError writes to the file and prints a red line on the console.
func LogError(message string, fields ...zap.Field) {
	Logger.Error(message, fields...)
	if ms := durationMs(fields); ms > 0 {
		consoleLogger.Error(fmt.Sprintf("✗ %s (%dms)", message, ms))
	} else {
		consoleLogger.Error("✗ " + message)
	}
}

func LogWarn(message string, fields ...zap.Field) {
	Logger.Warn(message, fields...)
}

func LogDebug(message string, fields ...zap.Field) {
	Logger.Debug(message, fields...)
}

func durationMs(fields []zap.Field) int64 {
	for _, f := range fields {
		if f.Key == "duration_ms" && f.Type == zapcore.Int64Type {
			return f.Integer
		}
	}
	return 0
}

func fieldString(fields []zap.Field, key string) string {
	for _, f := range fields {
		if f.Key == key && f.Type == zapcore.StringType {
			return f.String
		}
	}
	return ""
}

type rotatingLogWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	maxSize int64
}

// Write truncates the open file in place once it grows past maxSize. The file is opened
// with O_APPEND, so the next write lands at offset 0. If truncation fails the writer
// keeps appending to the same handle.
func (w *rotatingLogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if info, err := w.file.Stat(); err == nil && info.Size() > w.maxSize {
		if err := w.file.Truncate(0); err != nil {
			fmt.Fprintf(os.Stderr, "failed to truncate log file %s: %v\n", w.path, err)
		}
	}
	return w.file.Write(p)
}

func (w *rotatingLogWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

// getLogFileWriter opens path for append, falling back to stderr.
func getLogFileWriter(path string) zapcore.WriteSyncer {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v, falling back to stderr\n", path, err)
		return zapcore.AddSync(os.Stderr)
	}
	return &rotatingLogWriter{file: file, path: path, maxSize: MaxLogFileSize}
}

// fileEncoder prints "time     LEVEL message\t{fields as json}".
type fileEncoder struct {
	zapcore.Encoder
}

func (e *fileEncoder) Clone() zapcore.Encoder {
	return &fileEncoder{Encoder: e.Encoder.Clone()}
}

func (e *fileEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := buffer.NewPool().Get()

	buf.AppendString(entry.Time.Format("2006-01-02 15:04:05"))
	buf.AppendString("     ")
	buf.AppendString(entry.Level.CapitalString())
	buf.AppendString(" ")
	buf.AppendString(entry.Message)

	if len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(enc)
		}
		if data, err := json.Marshal(enc.Fields); err == nil {
			buf.AppendString("\t")
			buf.AppendString(string(data))
		}
	}

	buf.AppendString("\n")
	return buf, nil
}
