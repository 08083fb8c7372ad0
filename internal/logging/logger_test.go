package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func logFile(dir string, cat Category) string {
	return filepath.Join(dir, time.Now().Format("2006-01-02")+"_"+string(cat)+".log")
}

// TestAllCategoriesLog tests that every category writes its own file in debug mode
func TestAllCategoriesLog(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{DebugMode: true, Level: "debug", Dir: dir}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if !IsDebugMode() {
		t.Fatal("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot,
		CategorySource,
		CategoryNavigator,
		CategoryAPI,
		CategoryUI,
		CategoryWatch,
	}
	for _, cat := range categories {
		l := Get(cat)
		l.Debug("debug message for %s", cat)
		l.Info("info message for %s", cat)
		l.Warn("warn message for %s", cat)
		l.Error("error message for %s", cat)
	}
	CloseAll()

	for _, cat := range categories {
		data, err := os.ReadFile(logFile(dir, cat))
		if err != nil {
			t.Errorf("expected log file for %s: %v", cat, err)
			continue
		}
		content := string(data)
		for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
			if !strings.Contains(content, want) {
				t.Errorf("%s log missing %q", cat, want)
			}
		}
	}
}

func TestProductionModeWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Initialize(Options{DebugMode: false, Dir: dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer CloseAll()

	API("should not be written")
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected no logs directory in production mode, got err=%v", err)
	}
}

func TestCategoryFilterAndLevel(t *testing.T) {
	dir := t.TempDir()
	err := Initialize(Options{
		DebugMode:  true,
		Level:      "warn",
		Dir:        dir,
		Categories: map[string]bool{"watch": false},
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer CloseAll()

	if IsCategoryEnabled(CategoryWatch) {
		t.Error("watch category should be disabled")
	}
	if !IsCategoryEnabled(CategoryAPI) {
		t.Error("unlisted categories default to enabled")
	}

	Watch("dropped")
	API("below level")
	Get(CategoryAPI).Warn("kept")
	CloseAll()

	if _, err := os.Stat(logFile(dir, CategoryWatch)); !os.IsNotExist(err) {
		t.Error("disabled category must not create a file")
	}
	data, err := os.ReadFile(logFile(dir, CategoryAPI))
	if err != nil {
		t.Fatalf("expected api log: %v", err)
	}
	if strings.Contains(string(data), "below level") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Error("warn entry should be written")
	}
}

func TestJSONFormatWithFields(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{DebugMode: true, JSONFormat: true, Dir: dir}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer CloseAll()

	Get(CategoryAPI).With("request_id", "abc-123").Info("analysis sent")
	CloseAll()

	data, err := os.ReadFile(logFile(dir, CategoryAPI))
	if err != nil {
		t.Fatalf("expected api log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"request_id":"abc-123"`) {
		t.Errorf("expected structured field, got %s", content)
	}
	if !strings.Contains(content, `"msg":"analysis sent"`) {
		t.Errorf("expected JSON message, got %s", content)
	}
}

func TestDebugModeRequiresDir(t *testing.T) {
	defer CloseAll()
	if err := Initialize(Options{DebugMode: true}); err == nil {
		t.Error("expected error without a log directory")
	}
	_ = Initialize(Options{})
}

func TestNoopLoggerIsSafe(t *testing.T) {
	_ = Initialize(Options{})
	l := Get(CategoryUI)
	l.Info("nothing %d", 1)
	l.With("k", "v").Error("nothing")
}
