package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

var levelOrder = []string{"trace", "debug", "info", "warn", "error"}

func emitAll(l Logger) {
	l.LogTrace("msg-trace")
	l.LogDebug("msg-debug")
	l.LogInfo("msg-info")
	l.LogWarn("msg-warn")
	l.LogError("msg-error")
}

// wantLevels returns the levels at or above min.
func wantLevels(min string) map[string]bool {
	want := map[string]bool{}
	on := false
	for _, lvl := range levelOrder {
		if lvl == min {
			on = true
		}
		want[lvl] = on
	}
	return want
}

func checkLevels(t *testing.T, sink, output, min string) {
	t.Helper()
	for lvl, wanted := range wantLevels(min) {
		got := strings.Contains(output, "msg-"+lvl)
		if got != wanted {
			t.Errorf("%s sink at %q: msg-%s present=%v, want %v\noutput: %q", sink, min, lvl, got, wanted, output)
		}
	}
}

// TestMultiLoggerLevelMatrix sends every level through a console and a file
// sink configured at different levels, as serve does with a quiet terminal
// and a detailed run log.
func TestMultiLoggerLevelMatrix(t *testing.T) {
	for _, consoleLevel := range levelOrder {
		for _, fileLevel := range []string{"trace", "info", "error"} {
			t.Run(consoleLevel+"/"+fileLevel, func(t *testing.T) {
				buf := &bytes.Buffer{}
				fileLog, err := NewFileLoggerWithDirAndLevel(t.TempDir(), fileLevel)
				if err != nil {
					t.Fatalf("NewFileLoggerWithDirAndLevel() error = %v", err)
				}
				defer fileLog.Close()

				emitAll(NewMultiLogger(NewConsoleLogger(buf, consoleLevel), fileLog))

				checkLevels(t, "console", buf.String(), consoleLevel)
				checkLevels(t, "file", readFileLoggerOutput(t, fileLog), fileLevel)
			})
		}
	}
}

// TestConfiguredLevelSpellings covers level spellings arriving from config
// and flags. Case is ignored and unknown spellings fall back to info.
func TestConfiguredLevelSpellings(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"WARN", "warn"},
		{"Debug", "debug"},
		{"", "info"},
		{"verbose", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			emitAll(NewConsoleLogger(buf, tt.level))
			checkLevels(t, "console", buf.String(), tt.want)
		})
	}
}

// TestNoOpLoggerInMultiLogger verifies a NoOp sink does not swallow output
// meant for the other sinks.
func TestNoOpLoggerInMultiLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	emitAll(NewMultiLogger(NewNoOpLogger(), NewConsoleLogger(buf, "error")))
	checkLevels(t, "console", buf.String(), "error")
}

// readFileLoggerOutput syncs the run log and returns its contents.
func readFileLoggerOutput(t *testing.T, logger *FileLogger) string {
	t.Helper()
	logger.runLog.Sync()

	content, err := os.ReadFile(logger.runFile)
	if err != nil {
		t.Fatalf("Failed to read run log: %v", err)
	}
	return string(content)
}
