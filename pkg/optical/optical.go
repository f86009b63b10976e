package optical

import (
	"github.com/sirupsen/logrus"
)

// Mode is the measurement mode of the OptiCal. It is fixed once the driver
// is initialized.
type Mode int

const (
	// ModeCurrent measures luminance in cd/m^2.
	ModeCurrent Mode = iota
	// ModeVoltage measures voltage in V.
	ModeVoltage
)

func (m Mode) String() string {
	switch m {
	case ModeCurrent:
		return "current"
	case ModeVoltage:
		return "voltage"
	default:
		return "unknown"
	}
}

// ParseMode parses "current" or "voltage".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "current":
		return ModeCurrent, nil
	case "voltage":
		return ModeVoltage, nil
	default:
		return 0, configErrorf("Mode: '%s' is not supported by OptiCal, either use 'current' (default) or 'voltage'", s)
	}
}

// State is the initialization state of the driver.
type State int

const (
	StateUninitialized State = iota
	StateCalibrated
	StateReferencesLoaded
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateCalibrated:
		return "Calibrated"
	case StateReferencesLoaded:
		return "ReferencesLoaded"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// References are the calibration constants stored in the OptiCal EEPROM.
type References struct {
	VRef   int64 `json:"vRef"`   // reference voltage
	ZCount int64 `json:"zCount"` // zero error of the ADC
	RFeed  int64 `json:"rFeed"`  // feedback resistance
	RGain  int64 `json:"rGain"`  // voltage gain resistance
	KCal   int64 `json:"kCal"`   // probe calibration
}

// OptiCal is a driver for one OptiCal on one exclusively owned Connection.
// It is not safe for concurrent use.
type OptiCal struct {
	conn  Connection
	mode  Mode
	state State
	ref   References
}

// New initializes the OptiCal on conn: it calibrates the device, reads the
// reference constants and puts the device into mode ("current" or
// "voltage"). No driver is returned unless every step succeeded. An
// unsupported mode fails before anything is written to conn.
func New(conn Connection, mode string) (*OptiCal, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	o := &OptiCal{
		conn: conn,
		mode: m,
	}

	if err := o.init(); err != nil {
		o.setState(StateFailed)
		return nil, err
	}

	return o, nil
}

func (o *OptiCal) init() error {
	if err := o.control(CmdCalibrate, "calibrate"); err != nil {
		return err
	}
	o.setState(StateCalibrated)

	if err := o.readRefDefs(); err != nil {
		return err
	}
	o.setState(StateReferencesLoaded)

	var err error
	switch o.mode {
	case ModeCurrent:
		err = o.control(CmdCurrentMode, "set current mode")
	case ModeVoltage:
		err = o.control(CmdVoltageMode, "set voltage mode")
	}
	if err != nil {
		return err
	}
	o.setState(StateReady)

	return nil
}

// readRefDefs reads all reference constants, in device order.
func (o *OptiCal) readRefDefs() error {
	var err error
	for _, r := range []struct {
		dst         *int64
		start, stop int
	}{
		{&o.ref.VRef, RefVoltageStart, RefVoltageStop},
		{&o.ref.ZCount, ZeroErrorStart, ZeroErrorStop},
		{&o.ref.RFeed, FeedbackResistorStart, FeedbackResistorStop},
		{&o.ref.RGain, VoltageGainStart, VoltageGainStop},
		{&o.ref.KCal, ProbeCalibrationStart, ProbeCalibrationStop},
	} {
		*r.dst, err = o.readInt(r.start, r.stop)
		if err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"vRef":   o.ref.VRef,
		"zCount": o.ref.ZCount,
		"rFeed":  o.ref.RFeed,
		"rGain":  o.ref.RGain,
		"kCal":   o.ref.KCal,
	}).Debug("OptiCal references loaded")

	return nil
}

func (o *OptiCal) setState(s State) {
	logrus.WithFields(logrus.Fields{
		"from": o.state,
		"to":   s,
		"mode": o.mode,
	}).Debug("OptiCal state changed")
	o.state = s
}

// Mode returns the measurement mode.
func (o *OptiCal) Mode() Mode {
	return o.mode
}

// State returns the initialization state.
func (o *OptiCal) State() State {
	return o.state
}

// References returns the calibration constants read during initialization.
func (o *OptiCal) References() References {
	return o.ref
}

// Close closes the connection.
func (o *OptiCal) Close() error {
	return o.conn.Close()
}
