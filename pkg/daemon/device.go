package daemon

import (
	"errors"
	"sync"

	"github.com/charlie0129/optical/pkg/optical"
)

// Device is the part of the OptiCal driver the daemon uses.
type Device interface {
	Mode() optical.Mode
	References() optical.References
	Measure() (optical.Measurement, error)
	GetLuminance() (float64, error)
	GetVoltage() (float64, error)
	Info() (*optical.DeviceInfo, error)
	ReadEEPROM(address int) (byte, error)
	Close() error
}

var _ Device = &optical.OptiCal{}

var errNoDevice = errors.New("OptiCal is not open")

var (
	dev Device
	// devMu serializes every round trip to the device. The driver itself
	// must not be used concurrently.
	devMu = &sync.Mutex{}
)

func withDevice(f func(d Device) error) error {
	devMu.Lock()
	defer devMu.Unlock()

	if dev == nil {
		return errNoDevice
	}
	return f(dev)
}
