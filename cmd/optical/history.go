package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

func NewHistoryCommand() *cobra.Command {
	asJSON := false
	last := time.Duration(0)

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show measurements recorded by the daemon",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := apiClient.GetHistory(last)
			if err != nil {
				return err
			}

			if asJSON {
				b, err := json.MarshalIndent(history, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
				return nil
			}

			if len(history) == 0 {
				cmd.Println("No measurements recorded yet.")
				return nil
			}
			for i := range history {
				cmd.Printf("%s  %s\n", history[i].Time.Format(time.RFC3339), formatMeasurement(&history[i]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().DurationVar(&last, "last", 0, "only show measurements recorded within this duration")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "latest",
			Short: "Show the last recorded measurement without measuring",
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := apiClient.GetLastMeasurement()
				if err != nil {
					return err
				}
				if m == nil {
					cmd.Println("No measurements recorded yet.")
					return nil
				}

				cmd.Printf("%s  %s (%s ago)\n", m.Time.Format(time.RFC3339), formatMeasurement(m),
					time.Since(m.Time).Round(time.Second))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Clear the recorded measurements",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := apiClient.ClearHistory(); err != nil {
					return err
				}
				cmd.Println("history cleared")
				return nil
			},
		},
	)

	return cmd
}
