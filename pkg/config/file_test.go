package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charlie0129/optical/pkg/optical"
)

func TestFileDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if got := f.Port(); got != "/dev/ttyUSB0" {
		t.Errorf("Port() = %q", got)
	}
	if got := f.Baud(); got != 9600 {
		t.Errorf("Baud() = %d", got)
	}
	if got := f.Mode(); got != "current" {
		t.Errorf("Mode() = %q", got)
	}
	if got := f.Timeout(); got != 5*time.Second {
		t.Errorf("Timeout() = %s", got)
	}
	if got := f.SampleSchedule(); got != "@every 10s" {
		t.Errorf("SampleSchedule() = %q", got)
	}
	if got := f.HistorySize(); got != 60 {
		t.Errorf("HistorySize() = %d", got)
	}
	if f.AllowNonRootAccess() {
		t.Errorf("AllowNonRootAccess() = true")
	}
}

func TestFileLoad(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  bool
		wantMode string
		wantPort string
	}{
		{name: "empty file", content: "  \n", wantMode: "current", wantPort: "/dev/ttyUSB0"},
		{name: "partial", content: `{"mode": "voltage"}`, wantMode: "voltage", wantPort: "/dev/ttyUSB0"},
		{name: "full", content: `{"port": "/dev/ttyS1", "mode": "current", "baud": 19200}`, wantMode: "current", wantPort: "/dev/ttyS1"},
		{name: "invalid mode", content: `{"mode": "foo"}`, wantErr: true},
		{name: "invalid timeout", content: `{"timeoutSeconds": -1}`, wantErr: true},
		{name: "timeout too short", content: `{"timeoutSeconds": 0.05}`, wantErr: true},
		{name: "timeout too long", content: `{"timeoutSeconds": 60}`, wantErr: true},
		{name: "longest timeout", content: `{"timeoutSeconds": 25.5}`, wantMode: "current", wantPort: "/dev/ttyUSB0"},
		{name: "invalid json", content: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "optical.json")
			if err := os.WriteFile(p, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			f, err := NewFile(p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := f.Mode(); got != tt.wantMode {
				t.Errorf("Mode() = %q, want %q", got, tt.wantMode)
			}
			if got := f.Port(); got != tt.wantPort {
				t.Errorf("Port() = %q, want %q", got, tt.wantPort)
			}
		})
	}
}

func TestFileInvalidModeIsConfigurationError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "optical.json")
	if err := os.WriteFile(p, []byte(`{"mode": "foo"}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewFile(p)
	var cerr *optical.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Errorf("NewFile() error = %v, want ConfigurationError", err)
	}
}

func TestFileSaveLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "optical.json")
	f := NewFileFromConfig(nil, p)

	f.SetPort("/dev/ttyACM0")
	if err := f.SetMode("voltage"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetTimeout(1500 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	f.SetSampleSchedule("")
	if err := f.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	g, err := NewFile(p)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if g.Port() != "/dev/ttyACM0" || g.Mode() != "voltage" || g.Timeout() != 1500*time.Millisecond {
		t.Errorf("reloaded config = %+v", g.LogrusFields())
	}
	if g.SampleSchedule() != "" {
		t.Errorf("SampleSchedule() = %q, want empty", g.SampleSchedule())
	}
}

func TestFileSetters(t *testing.T) {
	f := NewFileFromConfig(nil, "")

	if err := f.SetMode("foo"); err == nil {
		t.Errorf("SetMode(foo) should fail")
	}
	if err := f.SetBaud(0); err == nil {
		t.Errorf("SetBaud(0) should fail")
	}
	if err := f.SetTimeout(0); err == nil {
		t.Errorf("SetTimeout(0) should fail")
	}
	if err := f.SetTimeout(time.Minute); err == nil {
		t.Errorf("SetTimeout(1m) should fail, the serial port caps it at 25.5s")
	}
	if err := f.SetTimeout(optical.MaxTimeout); err != nil {
		t.Errorf("SetTimeout(%s) error = %v", optical.MaxTimeout, err)
	}
	if err := f.SetHistorySize(-1); err == nil {
		t.Errorf("SetHistorySize(-1) should fail")
	}
	if f.Mode() != "current" {
		t.Errorf("failed setter changed mode to %q", f.Mode())
	}

	raw, err := NewRawFileConfigFromConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if *raw.Mode != "current" || *raw.Baud != 9600 {
		t.Errorf("NewRawFileConfigFromConfig() = %+v", raw)
	}
}

func TestFileReloadWhileReading(t *testing.T) {
	p := filepath.Join(t.TempDir(), "optical.json")
	if err := os.WriteFile(p, []byte(`{"mode": "voltage"}`), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := NewFile(p)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			if err := f.Load(); err != nil {
				t.Errorf("Load() error = %v", err)
				return
			}
		}
	}()

	for i := 0; i < 100; i++ {
		if got := f.Mode(); got != "voltage" {
			t.Fatalf("Mode() = %q during reload, want voltage", got)
		}
		_ = f.LogrusFields()
	}
	<-done
}
