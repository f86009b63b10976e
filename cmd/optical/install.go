package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/optical/pkg/config"
	"github.com/charlie0129/optical/pkg/daemon"
	daemonutils "github.com/charlie0129/optical/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	allowNonRootAccess := false
	port := ""
	mode := ""
	schedule := ""
	historySize := 0

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install optical daemon (system-wide)",
		GroupID: gInstallation,
		Long: `Install optical daemon as a systemd service (system-wide).

This makes the daemon own the OptiCal and start automatically on boot. You must run this command as root.

By default, only root user is allowed to access the optical daemon. If you want to allow non-root users to read measurements, use the --allow-non-root-access flag.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("non-root users are allowed to access the optical daemon.")
			} else {
				logrus.Info("only root user is allowed to access the optical daemon.")
			}
			if port != "" {
				conf.SetPort(port)
			}
			if mode != "" {
				if err := conf.SetMode(mode); err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("schedule") {
				if err := daemon.ValidateSchedule(schedule); err != nil {
					return err
				}
				conf.SetSampleSchedule(schedule)
			}
			if cmd.Flags().Changed("history-size") {
				if err := conf.SetHistorySize(historySize); err != nil {
					return err
				}
			}

			// Save first so the service starts with the new config.
			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			err = daemonutils.Install(configPath, unixSocketPath)
			if err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %v. Are you root?", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("`systemd' will use current binary (%s) at startup so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run ``optical install'' again.\n", exePath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow non-root users to access optical daemon.")
	cmd.Flags().StringVar(&port, "port", "", "serial port of the OptiCal to save in the config")
	cmd.Flags().StringVar(&mode, "mode", "", "measurement mode to save in the config, current or voltage")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule for sampling to save in the config, empty disables sampling")
	cmd.Flags().IntVar(&historySize, "history-size", historySize, "number of measurements the daemon keeps, 0 disables history")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall optical daemon (system-wide)",
		GroupID: gInstallation,
		Long: `Uninstall optical daemon from systemd (system-wide).

This stops the daemon and removes its service unit.

You must run this command as root.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := daemonutils.Uninstall()
			if err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}

			cmd.Println("successfully uninstalled")

			cmd.Printf("Your config is kept in %s, in case you want to use `optical' again. If you want a complete uninstall, you can remove both config file and optical itself manually.\n", configPath)

			return nil
		},
	}

	return cmd
}
