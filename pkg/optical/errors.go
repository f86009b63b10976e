package optical

import (
	"errors"
	"fmt"
)

// ErrOptiCal matches every error raised by the driver itself.
var ErrOptiCal = errors.New("optical error")

// TimeoutError is returned when the OptiCal did not send a complete reply
// within the read timeout.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("OptiCal timeout while trying to: %s", e.Op)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrOptiCal }

// NACKError is returned when the OptiCal rejected a command.
type NACKError struct {
	Op string
}

func (e *NACKError) Error() string {
	return fmt.Sprintf("OptiCal sent a NACK while trying to: %s", e.Op)
}

func (e *NACKError) Is(target error) bool { return target == ErrOptiCal }

// ConfigurationError is returned for an unsupported mode, an out of range
// EEPROM address, or a measurement that does not match the driver mode.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrOptiCal }

func configErrorf(format string, a ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, a...)}
}
