// internal/logger/pretty.go
package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// PrettyEncoder creates a user-friendly console encoder
func PrettyEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(prettyEncoderConfig())
}

func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(ColorCyan + "[DEBUG]" + ColorReset)
	case zapcore.InfoLevel:
		enc.AppendString(ColorGreen + "[INFO]" + ColorReset)
	case zapcore.WarnLevel:
		enc.AppendString(ColorYellow + "[WARN]" + ColorReset)
	case zapcore.ErrorLevel:
		enc.AppendString(ColorRed + "[ERROR]" + ColorReset)
	case zapcore.FatalLevel:
		enc.AppendString(ColorRed + ColorBold + "[FATAL]" + ColorReset)
	default:
		enc.AppendString("[" + level.CapitalString() + "]")
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

func level(debug bool) zapcore.Level {
	if debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// CreatePrettyLogger creates the console logger used before and after the
// TUI owns the terminal.
func CreatePrettyLogger(debug bool) (*zap.Logger, error) {
	core := zapcore.NewCore(
		PrettyEncoder(),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		level(debug),
	)
	return zap.New(&FieldFilterCore{core: core}), nil
}

// FormatMessage turns well-known log messages into one-line summaries.
func FormatMessage(msg string, fields ...zap.Field) string {
	switch msg {
	case "Signed in":
		return fmt.Sprintf("%s🔑 Signed in as %s%s", ColorGreen, extractField(fields, "account"), ColorReset)
	case "Signed out":
		return fmt.Sprintf("%s👋 Signed out %s%s", ColorBlue, extractField(fields, "account"), ColorReset)
	case "Submitting action":
		return fmt.Sprintf("%s⚡ %s %s on %s%s", ColorCyan,
			extractField(fields, "action"), extractField(fields, "amount"), extractField(fields, "contract"), ColorReset)
	case "Transaction submitted":
		return fmt.Sprintf("%s📤 Transaction sent: %s%s", ColorYellow, shortenHash(extractField(fields, "tx")), ColorReset)
	case "Transaction succeeded":
		return fmt.Sprintf("%s✅ Transaction final: %s%s", ColorGreen, shortenHash(extractField(fields, "tx")), ColorReset)
	case "Transaction failed":
		return fmt.Sprintf("%s❌ Transaction rejected: %s%s", ColorRed, shortenHash(extractField(fields, "tx")), ColorReset)
	case "Action failed":
		return fmt.Sprintf("%s✗ %s failed: %s%s", ColorRed, extractField(fields, "action"), extractField(fields, "error"), ColorReset)
	case "Action succeeded":
		return fmt.Sprintf("%s🎉 %s done%s", ColorGreen+ColorBold, extractField(fields, "action"), ColorReset)
	default:
		return msg
	}
}

func extractField(fields []zap.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		switch {
		case field.Type == zapcore.StringType:
			return field.String
		case field.Interface != nil:
			if err, ok := field.Interface.(error); ok {
				return err.Error()
			}
			return fmt.Sprintf("%v", field.Interface)
		default:
			return fmt.Sprintf("%d", field.Integer)
		}
	}
	return ""
}

func shortenHash(hash string) string {
	if len(hash) > 16 {
		return hash[:8] + "..." + hash[len(hash)-8:]
	}
	return hash
}

// FieldFilterCore rewrites known messages with FormatMessage and drops the
// structured fields, keeping console output to one readable line.
type FieldFilterCore struct {
	core   zapcore.Core
	fields []zapcore.Field
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	merged := append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &FieldFilterCore{core: c.core, fields: merged}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field(nil), c.fields...), fields...)
	entry.Message = FormatMessage(entry.Message, all...)
	return c.core.Write(entry, nil)
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}

// CreateTUILoggerWithBuffer creates a logger that writes only to buffer, so
// nothing reaches the terminal while the TUI is running.
func CreateTUILoggerWithBuffer(debug bool, buffer *LogBuffer) (*zap.Logger, error) {
	if buffer == nil {
		return nil, fmt.Errorf("buffer is required for TUI logger")
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	bufferCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		buffer,
		level(debug),
	)
	return zap.New(bufferCore), nil
}
