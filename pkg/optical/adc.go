package optical

import "github.com/sirupsen/logrus"

// ReadADC reads the ADC and returns the sample corrected by the zero count
// and centered around zero.
func (o *OptiCal) ReadADC() (int64, error) {
	logrus.Tracef("ReadADC called")

	resp, err := o.command(CmdReadADC, adcReplySize, "reading adc value")
	if err != nil {
		return 0, err
	}

	// Drop the trailing status byte.
	raw := int64(LittleEndian(resp[:adcReplySize-1]))
	adc := raw - o.ref.ZCount - adcOffset

	logrus.WithFields(logrus.Fields{
		"raw": raw,
		"adc": adc,
	}).Trace("ReadADC returned")

	return adc, nil
}
