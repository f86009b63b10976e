package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/optical/pkg/client"
	"github.com/charlie0129/optical/pkg/optical"
)

var (
	logLevel       = "info"
	unixSocketPath = "/var/run/optical.sock"
	configPath     = "/etc/optical.json"
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	gInstallation = "Installation:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
		gInstallation,
	}
)

var apiClient *client.Client

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	var (
		terr *optical.TimeoutError
		nerr *optical.NACKError
		serr *client.StatusError
	)

	switch {
	case errors.Is(err, client.ErrDaemonNotRunning):
		fmt.Fprintln(os.Stderr, "\nError: optical daemon is not running")
		fmt.Fprintln(os.Stderr, "  - Start it with 'optical daemon' or install it with 'optical install'")
		fmt.Fprintln(os.Stderr, "  - Or talk to the device directly with the '--direct' flag")
	case errors.Is(err, client.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or reinstall the daemon with the '--allow-non-root-access' flag to grant permissions to your user")
	case errors.As(err, &terr), errors.As(err, &serr) && serr.DeviceTimeout():
		fmt.Fprintln(os.Stderr, "\nError: the OptiCal did not answer in time")
		fmt.Fprintln(os.Stderr, "  - Check that it is connected and powered, and that the port is right")
	case errors.As(err, &nerr):
		fmt.Fprintln(os.Stderr, "\nError: the OptiCal rejected a command")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optical",
		Short: "optical reads luminance and voltage from a CRS OptiCal photometer",
		Long: `optical reads luminance and voltage from a CRS OptiCal photometer.

The daemon owns the serial port of the OptiCal and serves measurements to
the other commands. Most commands can also talk to the device directly with
--direct, as long as no daemon holds the port.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "optical daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewMeasureCommand(),
		NewLuminanceCommand(),
		NewVoltageCommand(),
		NewWatchCommand(),
		NewStatusCommand(),
		NewHistoryCommand(),
		NewInfoCommand(),
		NewEEPROMCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
