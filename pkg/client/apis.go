package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/optical/pkg/config"
	"github.com/charlie0129/optical/pkg/optical"
)

// EEPROMByte is a single EEPROM byte read through the daemon.
type EEPROMByte struct {
	Address int  `json:"address"`
	Value   byte `json:"value"`
}

func (c *Client) GetMeasurement() (*optical.Measurement, error) {
	ret, err := c.Get("/measurement")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get measurement")
	}

	var m optical.Measurement
	if err := json.Unmarshal([]byte(ret), &m); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal measurement")
	}
	return &m, nil
}

func (c *Client) GetLuminance() (float64, error) {
	return c.getFloat("/luminance", "luminance")
}

func (c *Client) GetVoltage() (float64, error) {
	return c.getFloat("/voltage", "voltage")
}

func (c *Client) getFloat(path, name string) (float64, error) {
	ret, err := c.Get(path)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get %s", name)
	}

	v, err := strconv.ParseFloat(ret, 64)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse %s", name)
	}
	return v, nil
}

func (c *Client) GetInfo() (*optical.DeviceInfo, error) {
	ret, err := c.Get("/info")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get device info")
	}

	var info optical.DeviceInfo
	if err := json.Unmarshal([]byte(ret), &info); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal device info")
	}
	return &info, nil
}

func (c *Client) GetReferences() (*optical.References, error) {
	ret, err := c.Get("/references")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get references")
	}

	var ref optical.References
	if err := json.Unmarshal([]byte(ret), &ref); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal references")
	}
	return &ref, nil
}

func (c *Client) ReadEEPROM(address int) (byte, error) {
	ret, err := c.Get("/eeprom/" + strconv.Itoa(address))
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to read eeprom at address %d", address)
	}

	var b EEPROMByte
	if err := json.Unmarshal([]byte(ret), &b); err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to unmarshal eeprom byte")
	}
	return b.Value, nil
}

// GetHistory returns the measurements recorded by the daemon. A zero last
// returns all of them.
func (c *Client) GetHistory(last time.Duration) ([]optical.Measurement, error) {
	path := "/history"
	if last > 0 {
		path += "?last=" + url.QueryEscape(last.String())
	}

	ret, err := c.Get(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get history")
	}

	var history []optical.Measurement
	if err := json.Unmarshal([]byte(ret), &history); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal history")
	}
	return history, nil
}

// GetLastMeasurement returns the last measurement recorded by the daemon,
// or nil if there is none yet.
func (c *Client) GetLastMeasurement() (*optical.Measurement, error) {
	ret, err := c.Get("/measurement/last")
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get last measurement")
	}

	var m optical.Measurement
	if err := json.Unmarshal([]byte(ret), &m); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal measurement")
	}
	return &m, nil
}

func (c *Client) ClearHistory() error {
	_, err := c.Send(http.MethodDelete, "/history", "")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to clear history")
	}
	return nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}
