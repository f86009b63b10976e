package optical

import "github.com/sirupsen/logrus"

// DeviceInfo identifies an OptiCal and its probe.
type DeviceInfo struct {
	ProductType       uint64     `json:"productType"`
	SerialNumber      uint64     `json:"serialNumber"`
	FirmwareVersion   uint64     `json:"firmwareVersion"`
	ProbeSerialNumber string     `json:"probeSerialNumber"`
	Mode              string     `json:"mode"`
	References        References `json:"references"`
}

// ProductType returns the raw product type bytes.
func (o *OptiCal) ProductType() ([]byte, error) {
	return o.ReadEEPROMRange(ProductTypeStart, ProductTypeStop)
}

// SerialNumber returns the raw serial number bytes of the OptiCal.
func (o *OptiCal) SerialNumber() ([]byte, error) {
	return o.ReadEEPROMRange(SerialNumberStart, SerialNumberStop)
}

// FirmwareVersion returns the raw firmware version bytes.
func (o *OptiCal) FirmwareVersion() ([]byte, error) {
	return o.ReadEEPROMRange(FirmwareVersionStart, FirmwareVersionStop)
}

// ProbeSerialNumber returns the raw serial number bytes of the probe.
func (o *OptiCal) ProbeSerialNumber() ([]byte, error) {
	return o.ReadEEPROMRange(ProbeSerialNumberStart, ProbeSerialNumberStop)
}

func (o *OptiCal) ReadRefVoltage() ([]byte, error) {
	return o.ReadEEPROMRange(RefVoltageStart, RefVoltageStop)
}

func (o *OptiCal) ReadZeroError() ([]byte, error) {
	return o.ReadEEPROMRange(ZeroErrorStart, ZeroErrorStop)
}

func (o *OptiCal) ReadFeedbackResistor() ([]byte, error) {
	return o.ReadEEPROMRange(FeedbackResistorStart, FeedbackResistorStop)
}

func (o *OptiCal) ReadVoltageGainResistor() ([]byte, error) {
	return o.ReadEEPROMRange(VoltageGainStart, VoltageGainStop)
}

func (o *OptiCal) ReadProbeCalibration() ([]byte, error) {
	return o.ReadEEPROMRange(ProbeCalibrationStart, ProbeCalibrationStop)
}

// Info reads the identification fields from the EEPROM.
func (o *OptiCal) Info() (*DeviceInfo, error) {
	logrus.Tracef("Info called")

	productType, err := o.ProductType()
	if err != nil {
		return nil, err
	}
	serial, err := o.SerialNumber()
	if err != nil {
		return nil, err
	}
	firmware, err := o.FirmwareVersion()
	if err != nil {
		return nil, err
	}
	probe, err := o.ProbeSerialNumber()
	if err != nil {
		return nil, err
	}

	return &DeviceInfo{
		ProductType:       LittleEndian(productType),
		SerialNumber:      LittleEndian(serial),
		FirmwareVersion:   LittleEndian(firmware),
		ProbeSerialNumber: probeString(probe),
		Mode:              o.mode.String(),
		References:        o.ref,
	}, nil
}

// probeString keeps the printable prefix of the probe serial number.
func probeString(b []byte) string {
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			return string(b[:i])
		}
	}
	return string(b)
}
