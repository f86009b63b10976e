package optical

// Command bytes understood by the OptiCal.
const (
	CmdCalibrate   byte = 'C'
	CmdCurrentMode byte = 'I'
	CmdVoltageMode byte = 'V'
	CmdReadADC     byte = 'L'
	// CmdReadEEPROM is added to the EEPROM address to form the command byte.
	CmdReadEEPROM byte = 0x80
)

// Reply markers.
const (
	ACK  byte = 0x06
	NACK byte = 0x15
)

// Reply sizes in bytes, including the trailing ACK/status byte.
const (
	controlReplySize = 1
	eepromReplySize  = 2
	adcReplySize     = 4
)

// EEPROMSize is the number of addressable bytes, 0..99.
const EEPROMSize = 100

// adcOffset centers the unsigned 19-bit ADC range around zero.
const adcOffset = 524288

// EEPROM memory map. Ranges are inclusive.
const (
	ProductTypeStart       = 0
	ProductTypeStop        = 1
	SerialNumberStart      = 2
	SerialNumberStop       = 5
	FirmwareVersionStart   = 6
	FirmwareVersionStop    = 7
	RefVoltageStart        = 16
	RefVoltageStop         = 19
	ZeroErrorStart         = 32
	ZeroErrorStop          = 35
	FeedbackResistorStart  = 48
	FeedbackResistorStop   = 51
	VoltageGainStart       = 64
	VoltageGainStop        = 67
	ProbeSerialNumberStart = 80
	ProbeSerialNumberStop  = 95
	ProbeCalibrationStart  = 96
	ProbeCalibrationStop   = 99
)
