package logger

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// openAppend creates the parent directory and opens path for appending.
func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// flusher runs flush every interval until stop is called.
type flusher struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func startFlusher(interval time.Duration, flush func() error, logger *zap.Logger, path string) *flusher {
	f := &flusher{ticker: time.NewTicker(interval), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-f.ticker.C:
				if err := flush(); err != nil {
					logger.Error("Periodic flush failed", zap.String("file", path), zap.Error(err))
				}
			case <-f.done:
				return
			}
		}
	}()
	return f
}

func (f *flusher) stop() {
	f.once.Do(func() {
		f.ticker.Stop()
		close(f.done)
	})
}

// SafeFileWriter is a buffered, mutex guarded file appender with periodic flush.
type SafeFileWriter struct {
	mu       sync.Mutex
	writer   *bufio.Writer
	file     *os.File
	flusher  *flusher
	logger   *zap.Logger
	filePath string

	writtenLines uint64
	flushCount   uint64
}

func NewSafeFileWriter(filePath string, flushInterval time.Duration, logger *zap.Logger) (*SafeFileWriter, error) {
	file, err := openAppend(filePath)
	if err != nil {
		return nil, err
	}

	sfw := &SafeFileWriter{
		writer:   bufio.NewWriter(file),
		file:     file,
		logger:   logger,
		filePath: filePath,
	}
	sfw.flusher = startFlusher(flushInterval, sfw.Flush, logger, filePath)
	return sfw, nil
}

// WriteLine writes line followed by a newline.
func (sfw *SafeFileWriter) WriteLine(line string) error {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if _, err := sfw.writer.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}
	sfw.writtenLines++
	return nil
}

func (sfw *SafeFileWriter) Flush() error {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if err := sfw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	if err := sfw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	sfw.flushCount++
	return nil
}

func (sfw *SafeFileWriter) Close() error {
	sfw.flusher.stop()

	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if err := sfw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := sfw.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	sfw.logger.Debug("Safe file writer closed",
		zap.String("file", sfw.filePath),
		zap.Uint64("writtenLines", sfw.writtenLines),
		zap.Uint64("flushCount", sfw.flushCount))
	return nil
}

func (sfw *SafeFileWriter) GetStats() (lines, flushes uint64) {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()
	return sfw.writtenLines, sfw.flushCount
}

// SafeCSVWriter is the CSV counterpart of SafeFileWriter.
type SafeCSVWriter struct {
	mu       sync.Mutex
	writer   *csv.Writer
	file     *os.File
	flusher  *flusher
	logger   *zap.Logger
	filePath string

	writtenRecords uint64
	flushCount     uint64
}

// NewSafeCSVWriter opens filePath for appending and writes header when the
// file is new.
func NewSafeCSVWriter(filePath string, header []string, flushInterval time.Duration, logger *zap.Logger) (*SafeCSVWriter, error) {
	file, err := openAppend(filePath)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	scw := &SafeCSVWriter{
		writer:   csv.NewWriter(file),
		file:     file,
		logger:   logger,
		filePath: filePath,
	}

	if stat.Size() == 0 && len(header) > 0 {
		if err := scw.writer.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		scw.writer.Flush()
	}

	scw.flusher = startFlusher(flushInterval, scw.Flush, logger, filePath)
	return scw, nil
}

func (scw *SafeCSVWriter) WriteRecord(record []string) error {
	scw.mu.Lock()
	defer scw.mu.Unlock()

	if err := scw.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	scw.writtenRecords++
	return nil
}

func (scw *SafeCSVWriter) Flush() error {
	scw.mu.Lock()
	defer scw.mu.Unlock()

	scw.writer.Flush()
	if err := scw.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	if err := scw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	scw.flushCount++
	return nil
}

func (scw *SafeCSVWriter) Close() error {
	scw.flusher.stop()

	scw.mu.Lock()
	defer scw.mu.Unlock()

	scw.writer.Flush()
	if err := scw.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error on close: %w", err)
	}
	if err := scw.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	scw.logger.Debug("Safe CSV writer closed",
		zap.String("file", scw.filePath),
		zap.Uint64("writtenRecords", scw.writtenRecords),
		zap.Uint64("flushCount", scw.flushCount))
	return nil
}

func (scw *SafeCSVWriter) GetStats() (records, flushes uint64) {
	scw.mu.Lock()
	defer scw.mu.Unlock()
	return scw.writtenRecords, scw.flushCount
}
