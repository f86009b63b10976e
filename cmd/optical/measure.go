package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/optical/pkg/events"
	"github.com/charlie0129/optical/pkg/optical"
)

func NewMeasureCommand() *cobra.Command {
	d := &directFlags{}
	count := 1
	interval := time.Duration(0)
	asJSON := false

	cmd := &cobra.Command{
		Use:     "measure",
		Short:   "Take a measurement in the current mode",
		GroupID: gBasic,
		Long: `Take a measurement in whatever mode the OptiCal is in.

Current mode measures luminance in cd/m^2, voltage mode measures voltage in V.
Use --count and --interval to take several measurements, one after another.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", count)
			}

			take := func(measure func() (*optical.Measurement, error)) error {
				for i := 0; i < count; i++ {
					if i > 0 && interval > 0 {
						time.Sleep(interval)
					}
					m, err := measure()
					if err != nil {
						return err
					}
					if asJSON {
						b, err := json.Marshal(m)
						if err != nil {
							return err
						}
						cmd.Println(string(b))
						continue
					}
					cmd.Printf("%s  %s\n", m.Time.Format(time.RFC3339), formatMeasurement(m))
				}
				return nil
			}

			if d.direct {
				return d.withDirect(func(o *optical.OptiCal) error {
					return take(func() (*optical.Measurement, error) {
						m, err := o.Measure()
						return &m, err
					})
				})
			}
			return take(apiClient.GetMeasurement)
		},
	}

	d.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", count, "number of measurements")
	cmd.Flags().DurationVarP(&interval, "interval", "i", interval, "time between measurements")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print measurements as JSON lines")

	return cmd
}

func newValueCommand(use, short, unit string, viaDaemon func() (float64, error), direct func(o *optical.OptiCal) (float64, error)) *cobra.Command {
	d := &directFlags{}

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var v float64
			var err error
			if d.direct {
				err = d.withDirect(func(o *optical.OptiCal) error {
					v, err = direct(o)
					return err
				})
			} else {
				v, err = viaDaemon()
			}
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", use, err)
			}

			cmd.Printf("%s\n", bold("%.6g %s", v, unit))
			return nil
		},
	}

	d.register(cmd)

	return cmd
}

func NewLuminanceCommand() *cobra.Command {
	return newValueCommand("luminance", "Measure luminance (current mode only)", optical.Unit(optical.ModeCurrent),
		func() (float64, error) { return apiClient.GetLuminance() },
		(*optical.OptiCal).GetLuminance,
	)
}

func NewVoltageCommand() *cobra.Command {
	return newValueCommand("voltage", "Measure voltage (voltage mode only)", optical.Unit(optical.ModeVoltage),
		func() (float64, error) { return apiClient.GetVoltage() },
		(*optical.OptiCal).GetVoltage,
	)
}

func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   "Print measurements sampled by the daemon as they arrive",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return apiClient.Events(ctx, func(ev events.Event) bool {
				switch ev.Name {
				case events.Measurement:
					m, err := events.DecodeAs[optical.Measurement](ev)
					if err != nil {
						logrus.Warnf("failed to decode measurement: %v", err)
						return true
					}
					cmd.Printf("%s  %s\n", m.Time.Format(time.RFC3339), formatMeasurement(&m))
				case events.MeasurementError:
					e, err := events.DecodeAs[events.MeasurementErrorEvent](ev)
					if err != nil {
						logrus.Warnf("failed to decode measurement error: %v", err)
						return true
					}
					cmd.Printf("%s  %s\n", time.Unix(e.Ts, 0).Format(time.RFC3339), color.RedString(e.Error))
				}
				return true
			})
		},
	}
}
