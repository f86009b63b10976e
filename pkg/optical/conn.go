package optical

import (
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

// Connection is the byte transport to the OptiCal. A Read that returns no
// data (0 bytes, or io.EOF) means the read timeout elapsed.
type Connection interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Flusher is implemented by connections that can discard input which
// arrived but was not read yet, like the tail of a reply that came in after
// the read timeout. *serial.Port implements it.
type Flusher interface {
	Flush() error
}

// SerialConfig describes how to open the serial port of the OptiCal.
type SerialConfig struct {
	Port    string
	Baud    int
	Timeout time.Duration
}

const (
	DefaultBaud    = 9600
	DefaultTimeout = 5 * time.Second

	// The serial port counts the read timeout in tenths of a second in a
	// single byte, so only this range can be honored.
	MinTimeout = 100 * time.Millisecond
	MaxTimeout = 25500 * time.Millisecond
)

// CheckTimeout reports whether the serial port can honor d as read timeout.
func CheckTimeout(d time.Duration) error {
	if d < MinTimeout || d > MaxTimeout {
		return configErrorf("timeout %s out of range %s..%s", d, MinTimeout, MaxTimeout)
	}
	return nil
}

// OpenSerial opens the serial port described by cfg. The OptiCal talks
// 8N1 without flow control.
func OpenSerial(cfg SerialConfig) (Connection, error) {
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if err := CheckTimeout(cfg.Timeout); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"port":    cfg.Port,
		"baud":    cfg.Baud,
		"timeout": cfg.Timeout,
	}).Debug("opening serial port")

	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.Timeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open serial port %s", cfg.Port)
	}

	return p, nil
}

// Open opens the serial port and initializes the OptiCal on it. The port is
// closed again if initialization fails.
func Open(cfg SerialConfig, mode string) (*OptiCal, error) {
	// Reject the mode before the port is even opened.
	if _, err := ParseMode(mode); err != nil {
		return nil, err
	}

	conn, err := OpenSerial(cfg)
	if err != nil {
		return nil, err
	}

	o, err := New(conn, mode)
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logrus.Warnf("failed to close serial port %s: %v", cfg.Port, cerr)
		}
		return nil, pkgerrors.Wrapf(err, "failed to initialize OptiCal on %s", cfg.Port)
	}

	return o, nil
}
