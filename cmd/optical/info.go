package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charlie0129/optical/pkg/optical"
)

func NewInfoCommand() *cobra.Command {
	d := &directFlags{}
	asJSON := false

	cmd := &cobra.Command{
		Use:     "info",
		Short:   "Show OptiCal identification and calibration references",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var info *optical.DeviceInfo
			var err error
			if d.direct {
				err = d.withDirect(func(o *optical.OptiCal) error {
					info, err = o.Info()
					return err
				})
			} else {
				info, err = apiClient.GetInfo()
			}
			if err != nil {
				return fmt.Errorf("failed to get device info: %w", err)
			}

			if asJSON {
				b, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
				return nil
			}

			cmd.Println(bold("OptiCal:"))
			cmd.Printf("  Product type: %s\n", bold("0x%04x", info.ProductType))
			cmd.Printf("  Serial number: %s\n", bold("%d", info.SerialNumber))
			cmd.Printf("  Firmware version: %s\n", bold("0x%04x", info.FirmwareVersion))
			cmd.Printf("  Probe serial number: %s\n", bold("%s", info.ProbeSerialNumber))
			cmd.Printf("  Mode: %s\n", bold("%s", info.Mode))
			cmd.Println()
			cmd.Println(bold("References:"))
			cmd.Printf("  Reference voltage (V_ref): %s\n", bold("%d", info.References.VRef))
			cmd.Printf("  Zero error (Z_count): %s\n", bold("%d", info.References.ZCount))
			cmd.Printf("  Feedback resistance (R_feed): %s\n", bold("%d", info.References.RFeed))
			cmd.Printf("  Voltage gain resistance (R_gain): %s\n", bold("%d", info.References.RGain))
			cmd.Printf("  Probe calibration (K_cal): %s\n", bold("%d", info.References.KCal))
			return nil
		},
	}

	d.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
