package optical

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ReadEEPROM reads the EEPROM byte at address (0..99).
func (o *OptiCal) ReadEEPROM(address int) (byte, error) {
	logrus.Tracef("ReadEEPROM(%d) called", address)

	if address < 0 || address >= EEPROMSize {
		return 0, configErrorf("eeprom address %d out of range 0..%d", address, EEPROMSize-1)
	}

	resp, err := o.command(CmdReadEEPROM+byte(address), eepromReplySize,
		fmt.Sprintf("reading eeprom at address %d", address))
	if err != nil {
		return 0, err
	}

	// The second byte is the ACK.
	return resp[0], nil
}

// ReadEEPROMRange reads the EEPROM from start to stop inclusive, one address
// per round trip. The first failing address aborts the whole read.
func (o *OptiCal) ReadEEPROMRange(start, stop int) ([]byte, error) {
	logrus.Tracef("ReadEEPROMRange(%d, %d) called", start, stop)

	if start > stop {
		return nil, configErrorf("invalid eeprom range %d..%d", start, stop)
	}

	ret := make([]byte, 0, stop-start+1)
	for addr := start; addr <= stop; addr++ {
		b, err := o.ReadEEPROM(addr)
		if err != nil {
			return nil, err
		}
		ret = append(ret, b)
	}

	return ret, nil
}

// DumpEEPROM reads every EEPROM address.
func (o *OptiCal) DumpEEPROM() ([]byte, error) {
	logrus.Tracef("DumpEEPROM called")

	return o.ReadEEPROMRange(0, EEPROMSize-1)
}

// LittleEndian reconstructs an unsigned integer from bytes stored least
// significant byte first.
func LittleEndian(b []byte) uint64 {
	var v uint64
	for i, x := range b {
		v |= uint64(x) << (8 * uint(i))
	}
	return v
}

func (o *OptiCal) readInt(start, stop int) (int64, error) {
	b, err := o.ReadEEPROMRange(start, stop)
	if err != nil {
		return 0, err
	}
	return int64(LittleEndian(b)), nil
}
