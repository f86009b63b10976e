package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/optical/pkg/config"
	"github.com/charlie0129/optical/pkg/optical"
)

// directFlags select talking to the OptiCal directly instead of through the
// daemon. Unset flags fall back to the config file.
type directFlags struct {
	direct  bool
	port    string
	mode    string
	baud    int
	timeout time.Duration
}

func (d *directFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&d.direct, "direct", false, "talk to the OptiCal directly instead of through the daemon")
	f.StringVar(&d.port, "port", "", "serial port of the OptiCal (with --direct, overrides the config file)")
	f.StringVar(&d.mode, "mode", "", "measurement mode, current or voltage (with --direct, overrides the config file)")
	f.IntVar(&d.baud, "baud", 0, "baud rate (with --direct, overrides the config file)")
	f.DurationVar(&d.timeout, "timeout", 0, "read timeout (with --direct, overrides the config file)")
}

// open opens the OptiCal with the config file values overridden by flags.
func (d *directFlags) open() (*optical.OptiCal, error) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return nil, err
	}

	if d.port != "" {
		conf.SetPort(d.port)
	}
	if d.mode != "" {
		if err := conf.SetMode(d.mode); err != nil {
			return nil, err
		}
	}
	if d.baud != 0 {
		if err := conf.SetBaud(d.baud); err != nil {
			return nil, err
		}
	}
	if d.timeout != 0 {
		if err := conf.SetTimeout(d.timeout); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(conf.LogrusFields()).Debug("opening OptiCal directly")

	return optical.Open(optical.SerialConfig{
		Port:    conf.Port(),
		Baud:    conf.Baud(),
		Timeout: conf.Timeout(),
	}, conf.Mode())
}

// withDirect opens the OptiCal, runs f and closes it again.
func (d *directFlags) withDirect(f func(o *optical.OptiCal) error) error {
	o, err := d.open()
	if err != nil {
		return err
	}
	defer func() {
		if err := o.Close(); err != nil {
			logrus.Warnf("failed to close OptiCal: %v", err)
		}
	}()

	return f(o)
}

func parseIntArg(args []string, valueName string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("invalid number of arguments")
	}

	value, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", valueName, err)
	}

	return value, nil
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func formatMeasurement(m *optical.Measurement) string {
	return bold("%.6g %s", m.Value, m.Unit)
}
