package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/charlie0129/optical/pkg/config"
	"github.com/charlie0129/optical/pkg/optical"
)

type statusOutput struct {
	Version    string                `json:"version"`
	Config     *config.RawFileConfig `json:"config"`
	References *optical.References   `json:"references"`
	History    []optical.Measurement `json:"history"`
}

func NewStatusCommand() *cobra.Command {
	asJSON := false
	last := time.Duration(0)

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Get the current status of the optical daemon",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := fetchStatus(last)
			if err != nil {
				return err
			}

			if asJSON {
				b, err := json.MarshalIndent(s, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
				return nil
			}

			cmd.Println(bold("Daemon:"))
			cmd.Printf("  Version: %s\n", bold("%s", s.Version))
			cmd.Printf("  Port: %s\n", bold("%s", *s.Config.Port))
			cmd.Printf("  Mode: %s\n", bold("%s", *s.Config.Mode))
			if *s.Config.SampleSchedule == "" {
				cmd.Printf("  Sampling: %s\n", bold("disabled"))
			} else {
				cmd.Printf("  Sampling: %s\n", bold("%s", *s.Config.SampleSchedule))
			}
			cmd.Println()

			cmd.Println(bold("References:"))
			cmd.Printf("  V_ref: %s  Z_count: %s  R_feed: %s  R_gain: %s  K_cal: %s\n",
				bold("%d", s.References.VRef),
				bold("%d", s.References.ZCount),
				bold("%d", s.References.RFeed),
				bold("%d", s.References.RGain),
				bold("%d", s.References.KCal),
			)
			cmd.Println()

			if len(s.History) == 0 {
				cmd.Println("No measurements recorded yet.")
				return nil
			}

			latest := s.History[len(s.History)-1]
			cmd.Printf("Last measurement: %s (%s ago)\n",
				formatMeasurement(&latest),
				time.Since(latest.Time).Round(time.Second))
			cmd.Printf("Recorded measurements: %s\n", bold("%d", len(s.History)))
			if lo, hi, ok := valueRange(s.History); ok {
				cmd.Printf("  Range: %s .. %s\n", bold("%.6g", lo), bold("%.6g", hi))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().DurationVar(&last, "last", 0, "only include measurements recorded within this duration")

	return cmd
}

func fetchStatus(last time.Duration) (*statusOutput, error) {
	ver, err := apiClient.GetVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get daemon version: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	ref, err := apiClient.GetReferences()
	if err != nil {
		return nil, fmt.Errorf("failed to get references: %w", err)
	}

	history, err := apiClient.GetHistory(last)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return &statusOutput{
		Version:    ver,
		Config:     conf,
		References: ref,
		History:    history,
	}, nil
}

func valueRange(ms []optical.Measurement) (float64, float64, bool) {
	if len(ms) == 0 {
		return 0, 0, false
	}
	lo, hi := ms[0].Value, ms[0].Value
	for _, m := range ms[1:] {
		if m.Value < lo {
			lo = m.Value
		}
		if m.Value > hi {
			hi = m.Value
		}
	}
	return lo, hi, true
}
