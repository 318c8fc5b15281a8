package logger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LogBuffer keeps the most recent entries in memory for the logs screen and
// spills evicted entries to a file.
type LogBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool
	spill        *SafeFileWriter
	logger       *zap.Logger

	totalEntries   uint64
	spilledEntries uint64
}

// NewLogBuffer creates a buffer holding maxSize entries that spills to
// spillFilePath.
func NewLogBuffer(maxSize int, spillFilePath string, logger *zap.Logger) (*LogBuffer, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("invalid log buffer size %d", maxSize)
	}
	spill, err := NewSafeFileWriter(spillFilePath, time.Second, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open spill file: %w", err)
	}

	return &LogBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
		spill:      spill,
		logger:     logger,
	}, nil
}

// Add appends an entry, spilling the oldest one once the ring is full.
func (lb *LogBuffer) Add(level, message string, fields map[string]interface{}) error {
	return lb.add(LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	})
}

func (lb *LogBuffer) add(entry LogEntry) error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	var evicted *LogEntry
	if lb.wrapped {
		old := lb.ringBuffer[lb.currentIndex]
		evicted = &old
	}

	lb.ringBuffer[lb.currentIndex] = entry
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
	if lb.currentIndex == 0 {
		lb.wrapped = true
	}
	lb.totalEntries++

	if evicted != nil {
		if err := lb.spillToFile(*evicted); err != nil {
			lb.logger.Error("Failed to spill log entry to file", zap.Error(err))
			return err
		}
		lb.spilledEntries++
	}
	return nil
}

// Write implements zapcore.WriteSyncer for JSON encoded entries, so a zap
// core can log straight into the buffer.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(p, &raw); err != nil {
		return 0, fmt.Errorf("failed to decode log entry: %w", err)
	}

	entry := LogEntry{Timestamp: time.Now()}
	if v, ok := raw["level"].(string); ok {
		entry.Level = v
	}
	if v, ok := raw["msg"].(string); ok {
		entry.Message = v
	}
	if v, ok := raw["logger"].(string); ok {
		entry.Logger = v
	}
	if v, ok := raw["time"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			entry.Timestamp = ts
		}
	}
	for _, k := range []string{"level", "msg", "logger", "time"} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		entry.Fields = raw
	}

	if err := lb.add(entry); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Sync flushes the spill file.
func (lb *LogBuffer) Sync() error {
	return lb.Flush()
}

func (lb *LogBuffer) spillToFile(entry LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return lb.spill.WriteLine(string(data))
}

// GetRecentLogs returns up to limit of the newest entries, oldest first.
// A limit <= 0 returns everything in memory.
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	start := 0
	if lb.wrapped {
		count = lb.maxSize
		start = lb.currentIndex
	}
	if limit > 0 && limit < count {
		start += count - limit
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, lb.ringBuffer[(start+i)%lb.maxSize])
	}
	return logs
}

// Flush forces a write of any buffered data to the spill file
func (lb *LogBuffer) Flush() error {
	return lb.spill.Flush()
}

// Close spills everything still in memory and closes the file.
func (lb *LogBuffer) Close() error {
	for _, entry := range lb.GetRecentLogs(0) {
		if err := lb.spillToFile(entry); err != nil {
			lb.logger.Error("Failed to spill entry during close", zap.Error(err))
		}
	}

	total, spilled := lb.GetStats()
	if err := lb.spill.Close(); err != nil {
		return err
	}
	lines, flushes := lb.spill.GetStats()

	lb.logger.Info("Log buffer closed",
		zap.Uint64("totalEntries", total),
		zap.Uint64("spilledEntries", spilled),
		zap.Uint64("spillLines", lines),
		zap.Uint64("spillFlushes", flushes))
	return nil
}

// GetStats returns buffer statistics
func (lb *LogBuffer) GetStats() (total, spilled uint64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries, lb.spilledEntries
}
