package optical

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Measurement is a single converted reading.
type Measurement struct {
	Mode  string    `json:"mode"`
	Value float64   `json:"value"`
	Unit  string    `json:"unit"`
	ADC   int64     `json:"adc"`
	Time  time.Time `json:"time"`
}

// GetLuminance returns the luminance in cd/m^2. Only available in current
// mode.
func (o *OptiCal) GetLuminance() (float64, error) {
	logrus.Tracef("GetLuminance called")

	if o.mode != ModeCurrent {
		return 0, configErrorf("GetLuminance() is only available in 'current' mode")
	}

	m, err := o.measure()
	if err != nil {
		return 0, err
	}
	return m.Value, nil
}

// GetVoltage returns the voltage in V. Only available in voltage mode.
func (o *OptiCal) GetVoltage() (float64, error) {
	logrus.Tracef("GetVoltage called")

	if o.mode != ModeVoltage {
		return 0, configErrorf("GetVoltage() is only available in 'voltage' mode")
	}

	m, err := o.measure()
	if err != nil {
		return 0, err
	}
	return m.Value, nil
}

// Measure takes a reading in whatever mode the driver is in.
func (o *OptiCal) Measure() (Measurement, error) {
	logrus.Tracef("Measure called")

	return o.measure()
}

func (o *OptiCal) measure() (Measurement, error) {
	if o.state != StateReady {
		return Measurement{}, configErrorf("OptiCal is not ready (state %s)", o.state)
	}

	adc, err := o.ReadADC()
	if err != nil {
		return Measurement{}, err
	}

	value, err := Convert(adc, o.ref, o.mode)
	if err != nil {
		return Measurement{}, err
	}

	m := Measurement{
		Mode:  o.mode.String(),
		Value: value,
		Unit:  Unit(o.mode),
		ADC:   adc,
		Time:  time.Now(),
	}

	logrus.WithFields(logrus.Fields{
		"adc":   adc,
		"value": value,
		"unit":  m.Unit,
	}).Debug("OptiCal measurement")

	return m, nil
}

// Convert turns a corrected ADC count into a physical value.
//
// In voltage mode the result is the scaled ADC voltage without dividing by
// the gain resistance. R_gain is read from the device but unused.
func Convert(adc int64, ref References, mode Mode) (float64, error) {
	numerator := float64(adc) / adcOffset * float64(ref.VRef) * 1e-6

	switch mode {
	case ModeCurrent:
		denominator := float64(ref.RFeed) * float64(ref.KCal) * 1e-15
		if denominator == 0 {
			return 0, fmt.Errorf("cannot compute luminance: feedback resistance %d, probe calibration %d", ref.RFeed, ref.KCal)
		}
		return numerator / denominator, nil
	case ModeVoltage:
		return numerator, nil
	default:
		return 0, configErrorf("unknown mode %d", mode)
	}
}

// Unit returns the unit of measurements taken in mode.
func Unit(mode Mode) string {
	switch mode {
	case ModeCurrent:
		return "cd/m^2"
	case ModeVoltage:
		return "V"
	default:
		return ""
	}
}
