package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Config interface {
	Port() string
	Baud() int
	Mode() string
	Timeout() time.Duration
	SampleSchedule() string
	HistorySize() int
	AllowNonRootAccess() bool

	SetPort(string)
	SetBaud(int) error
	SetMode(string) error
	SetTimeout(time.Duration) error
	SetSampleSchedule(string)
	SetHistorySize(int) error
	SetAllowNonRootAccess(bool)

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
