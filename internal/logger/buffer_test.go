package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogBufferConcurrentAccess(t *testing.T) {
	tempDir := t.TempDir()
	spillFile := filepath.Join(tempDir, "test_spill.log")

	buffer, err := NewLogBuffer(100, spillFile, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}
	defer buffer.Close()

	var wg sync.WaitGroup
	numGoroutines := 10
	logsPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < logsPerGoroutine; j++ {
				fields := map[string]interface{}{"goroutine": id, "iteration": j}
				if err := buffer.Add("info", fmt.Sprintf("Log from goroutine %d, iteration %d", id, j), fields); err != nil {
					t.Errorf("Failed to add log: %v", err)
				}
			}
		}(i)
	}

	readers := sync.WaitGroup{}
	readers.Add(1)
	go func() {
		defer readers.Done()
		for i := 0; i < 50; i++ {
			_ = buffer.GetRecentLogs(10)
			_, _ = buffer.GetStats()
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()
	readers.Wait()

	if err := buffer.Flush(); err != nil {
		t.Errorf("Failed to flush: %v", err)
	}

	total, spilled := buffer.GetStats()
	expectedTotal := uint64(numGoroutines * logsPerGoroutine)
	if total != expectedTotal {
		t.Errorf("Expected %d total entries, got %d", expectedTotal, total)
	}
	if spilled != expectedTotal-100 {
		t.Errorf("Expected %d spilled entries, got %d", expectedTotal-100, spilled)
	}
	if _, err := os.Stat(spillFile); os.IsNotExist(err) {
		t.Error("Spill file should exist")
	}
}

func TestLogBufferRingBufferBehavior(t *testing.T) {
	spillFile := filepath.Join(t.TempDir(), "test_ring.log")

	bufferSize := 5
	buffer, err := NewLogBuffer(bufferSize, spillFile, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}
	defer buffer.Close()

	for i := 0; i < 10; i++ {
		if err := buffer.Add("info", fmt.Sprintf("Log %d", i), nil); err != nil {
			t.Errorf("Failed to add log: %v", err)
		}
	}

	logs := buffer.GetRecentLogs(10)
	if len(logs) != bufferSize {
		t.Fatalf("Expected %d logs in buffer, got %d", bufferSize, len(logs))
	}
	for i, entry := range logs {
		want := fmt.Sprintf("Log %d", i+5)
		if entry.Message != want {
			t.Errorf("Entry %d: expected %q, got %q", i, want, entry.Message)
		}
	}

	recent := buffer.GetRecentLogs(2)
	if len(recent) != 2 || recent[0].Message != "Log 8" || recent[1].Message != "Log 9" {
		t.Errorf("Expected the two newest logs oldest first, got %+v", recent)
	}

	_, spilled := buffer.GetStats()
	if spilled != 5 {
		t.Errorf("Expected 5 spilled entries, got %d", spilled)
	}
}

func TestLogBufferBeforeWrap(t *testing.T) {
	buffer, err := NewLogBuffer(10, filepath.Join(t.TempDir(), "spill.log"), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}
	defer buffer.Close()

	if logs := buffer.GetRecentLogs(0); len(logs) != 0 {
		t.Fatalf("Expected empty buffer, got %d entries", len(logs))
	}

	_ = buffer.Add("info", "first", nil)
	_ = buffer.Add("warn", "second", nil)

	logs := buffer.GetRecentLogs(0)
	if len(logs) != 2 || logs[0].Message != "first" || logs[1].Level != "warn" {
		t.Errorf("Unexpected entries: %+v", logs)
	}
}

func TestNewLogBufferRejectsBadSize(t *testing.T) {
	if _, err := NewLogBuffer(0, filepath.Join(t.TempDir(), "spill.log"), zap.NewNop()); err == nil {
		t.Fatal("Expected error for zero size")
	}
}

func TestTUILoggerWritesIntoBuffer(t *testing.T) {
	buffer, err := NewLogBuffer(10, filepath.Join(t.TempDir(), "spill.log"), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}
	defer buffer.Close()

	log, err := CreateTUILoggerWithBuffer(false, buffer)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	before := time.Now().Add(-time.Second)
	log.Named("session").Info("Signed in", zap.String("account", "alice.testnet"))
	log.Debug("hidden below info")

	logs := buffer.GetRecentLogs(0)
	if len(logs) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(logs))
	}
	entry := logs[0]
	if entry.Message != "Signed in" || entry.Level != "info" || entry.Logger != "session" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
	if entry.Fields["account"] != "alice.testnet" {
		t.Errorf("Expected account field, got %v", entry.Fields)
	}
	if entry.Timestamp.Before(before) {
		t.Errorf("Timestamp was not parsed: %v", entry.Timestamp)
	}
}

func TestCreateTUILoggerRequiresBuffer(t *testing.T) {
	if _, err := CreateTUILoggerWithBuffer(true, nil); err == nil {
		t.Fatal("Expected error without buffer")
	}
}

func TestLogBufferCloseSpillsMemory(t *testing.T) {
	spillFile := filepath.Join(t.TempDir(), "spill.log")
	buffer, err := NewLogBuffer(3, spillFile, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}
	for i := 0; i < 4; i++ {
		_ = buffer.Add("info", fmt.Sprintf("Log %d", i), nil)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	file, err := os.Open(spillFile)
	if err != nil {
		t.Fatalf("Failed to open spill file: %v", err)
	}
	defer file.Close()

	var messages []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Bad spill line %q: %v", scanner.Text(), err)
		}
		messages = append(messages, entry.Message)
	}
	want := []string{"Log 0", "Log 1", "Log 2", "Log 3"}
	if fmt.Sprint(messages) != fmt.Sprint(want) {
		t.Errorf("Expected %v, got %v", want, messages)
	}
}

func TestLogBufferCloseLogsSpillStats(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	buffer, err := NewLogBuffer(2, filepath.Join(t.TempDir(), "spill.log"), zap.New(core))
	if err != nil {
		t.Fatalf("Failed to create log buffer: %v", err)
	}
	for i := 0; i < 3; i++ {
		_ = buffer.Add("info", fmt.Sprintf("Log %d", i), nil)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	closed := logs.FilterMessage("Log buffer closed").All()
	if len(closed) != 1 {
		t.Fatalf("Expected one close line, got %d", len(closed))
	}
	fields := closed[0].ContextMap()
	if fields["totalEntries"] != uint64(3) {
		t.Errorf("Expected 3 total entries, got %v", fields["totalEntries"])
	}
	if fields["spillLines"] != uint64(3) {
		t.Errorf("Expected 3 spill lines, got %v", fields["spillLines"])
	}
	if _, ok := fields["spillFlushes"]; !ok {
		t.Error("Expected spillFlushes field")
	}
}
