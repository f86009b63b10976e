package optical

import (
	"errors"
	"testing"
	"time"
)

func TestCheckTimeout(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		wantErr bool
	}{
		{timeout: 50 * time.Millisecond, wantErr: true},
		{timeout: MinTimeout},
		{timeout: DefaultTimeout},
		{timeout: MaxTimeout},
		{timeout: time.Minute, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.timeout.String(), func(t *testing.T) {
			err := CheckTimeout(tt.timeout)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckTimeout() error = %v, wantErr %v", err, tt.wantErr)
			}
			var cerr *ConfigurationError
			if tt.wantErr && !errors.As(err, &cerr) {
				t.Errorf("error = %v, want ConfigurationError", err)
			}
		})
	}
}

func TestOpenSerialRejectsTimeout(t *testing.T) {
	// The port does not exist, so only the timeout check can produce a
	// ConfigurationError.
	_, err := OpenSerial(SerialConfig{Port: "/dev/optical-does-not-exist", Timeout: time.Minute})
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Errorf("OpenSerial() error = %v, want ConfigurationError", err)
	}
}
