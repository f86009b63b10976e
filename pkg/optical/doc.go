// Package optical drives a CRS OptiCal photometer over a serial link.
//
// It contains:
//
//   - Connection: the byte transport to the device (serial port or mock)
//   - OptiCal: the driver, which calibrates the device, loads the reference
//     constants from its EEPROM and converts raw ADC counts into luminance
//     (cd/m^2) or voltage (V)
//
// The device protocol is one command byte followed by a fixed-size reply.
// Every reply is checked for a NACK byte and for a short (timed out) read
// before it is interpreted.
package optical
