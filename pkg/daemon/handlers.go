package daemon

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/optical/pkg/config"
	"github.com/charlie0129/optical/pkg/optical"
	"github.com/charlie0129/optical/pkg/version"
)

// statusFor maps driver errors to HTTP status codes.
func statusFor(err error) int {
	var (
		terr *optical.TimeoutError
		nerr *optical.NACKError
		cerr *optical.ConfigurationError
	)
	switch {
	case errors.As(err, &cerr):
		return http.StatusBadRequest
	case errors.As(err, &terr):
		return http.StatusGatewayTimeout
	case errors.As(err, &nerr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	code := statusFor(err)
	c.IndentedJSON(code, err.Error())
	_ = c.AbortWithError(code, err)
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func getMeasurement(c *gin.Context) {
	m, err := sample()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, m)
}

func getLuminance(c *gin.Context) {
	var v float64
	err := withDevice(func(d Device) error {
		var err error
		v, err = d.GetLuminance()
		return err
	})
	if err != nil {
		logrus.Errorf("getLuminance failed: %v", err)
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, v)
}

func getVoltage(c *gin.Context) {
	var v float64
	err := withDevice(func(d Device) error {
		var err error
		v, err = d.GetVoltage()
		return err
	})
	if err != nil {
		logrus.Errorf("getVoltage failed: %v", err)
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, v)
}

func getInfo(c *gin.Context) {
	var info *optical.DeviceInfo
	err := withDevice(func(d Device) error {
		var err error
		info, err = d.Info()
		return err
	})
	if err != nil {
		logrus.Errorf("getInfo failed: %v", err)
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, info)
}

func getReferences(c *gin.Context) {
	var ref optical.References
	err := withDevice(func(d Device) error {
		ref = d.References()
		return nil
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, ref)
}

// EEPROMByte is the reply of GET /eeprom/:address.
type EEPROMByte struct {
	Address int  `json:"address"`
	Value   byte `json:"value"`
}

func getEEPROM(c *gin.Context) {
	addr, err := strconv.Atoi(c.Param("address"))
	if err != nil {
		err = fmt.Errorf("invalid eeprom address %q: %w", c.Param("address"), err)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	var b byte
	err = withDevice(func(d Device) error {
		var err error
		b, err = d.ReadEEPROM(addr)
		return err
	})
	if err != nil {
		logrus.Errorf("getEEPROM failed: %v", err)
		abortWithError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, EEPROMByte{Address: addr, Value: b})
}

// getHistory returns the recorded measurements. ?last=<duration> limits the
// result to recent ones.
func getHistory(c *gin.Context) {
	last := c.Query("last")
	if last == "" {
		c.IndentedJSON(http.StatusOK, recorder.GetRecords())
		return
	}

	d, err := time.ParseDuration(last)
	if err != nil {
		err = fmt.Errorf("invalid duration %q: %w", last, err)
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	c.IndentedJSON(http.StatusOK, recorder.GetRecordsIn(d))
}

// getLastMeasurement returns the last recorded measurement without
// touching the device.
func getLastMeasurement(c *gin.Context) {
	m, ok := recorder.GetLastRecord()
	if !ok {
		c.IndentedJSON(http.StatusNotFound, "no measurement recorded yet")
		return
	}

	c.IndentedJSON(http.StatusOK, m)
}

func deleteHistory(c *gin.Context) {
	recorder.ClearRecords()
	logrus.Info("measurement history cleared")

	c.IndentedJSON(http.StatusOK, "ok")
}

// getEvents streams sampled measurements as server-sent events.
func getEvents(c *gin.Context) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	// Send the headers right away so the client knows it is subscribed.
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
