package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	if err := Init(Config{Debug: false, LogDir: logDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after Init")
	}
	if Logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want info", Logger.GetLevel())
	}

	Debug("debug message")
	Info("info message", "key", "value")
	Warn("warn message")
	Error("error message")
}

func TestInitDebugMode(t *testing.T) {
	if err := Init(Config{Debug: true, LogDir: t.TempDir()}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", Logger.GetLevel())
	}
}

func TestHelpersWithoutInit(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	Debug("nothing happens")
	Info("nothing happens")
	Warn("nothing happens")
	Error("nothing happens")
}
