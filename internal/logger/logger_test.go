package logger

import (
	"bytes"
	"os"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebug_DisabledByDefault(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden message")

	if buf.Len() != 0 {
		t.Errorf("expected no output when verbose is off, got %q", buf.String())
	}
}

func TestDebug_Enabled(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("refresh for %s", "cred-1")

	if got := buf.String(); got != "[DEBUG] refresh for cred-1\n" {
		t.Errorf("unexpected debug output: %q", got)
	}
}

func TestInfoAndWarn(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("created")
	Warn("marked unhealthy")

	want := "[INFO] created\n[WARN] marked unhealthy\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestIsVerbose(t *testing.T) {
	defer reset()

	if IsVerbose() {
		t.Error("verbose should default to off")
	}
	SetVerbose(true)
	if !IsVerbose() {
		t.Error("verbose should be on after SetVerbose(true)")
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(i int) {
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	// Test passes if the race detector stays quiet.
}
