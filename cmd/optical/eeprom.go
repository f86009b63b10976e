package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charlie0129/optical/pkg/optical"
)

func NewEEPROMCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "eeprom",
		Short:   "Read the OptiCal EEPROM",
		GroupID: gAdvanced,
	}

	cmd.AddCommand(newEEPROMReadCommand(), newEEPROMDumpCommand())

	return cmd
}

func newEEPROMReadCommand() *cobra.Command {
	d := &directFlags{}

	cmd := &cobra.Command{
		Use:   "read <address>",
		Short: fmt.Sprintf("Read the EEPROM byte at address (0-%d)", optical.EEPROMSize-1),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseIntArg(args, "address")
			if err != nil {
				return err
			}

			var b byte
			if d.direct {
				err = d.withDirect(func(o *optical.OptiCal) error {
					b, err = o.ReadEEPROM(addr)
					return err
				})
			} else {
				b, err = apiClient.ReadEEPROM(addr)
			}
			if err != nil {
				return err
			}

			cmd.Printf("%d: 0x%02x\n", addr, b)
			return nil
		},
	}

	d.register(cmd)

	return cmd
}

func newEEPROMDumpCommand() *cobra.Command {
	d := &directFlags{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the whole EEPROM",
		Long: `Dump the whole EEPROM as hex, 16 bytes per line, prefixed by the hex
address of the first byte.

Each address is a separate round trip to the device, so this takes a while.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var mem []byte
			var err error
			if d.direct {
				err = d.withDirect(func(o *optical.OptiCal) error {
					mem, err = o.DumpEEPROM()
					return err
				})
			} else {
				mem, err = dumpViaDaemon()
			}
			if err != nil {
				return err
			}

			cmd.Print(formatDump(mem))
			return nil
		},
	}

	d.register(cmd)

	return cmd
}

func dumpViaDaemon() ([]byte, error) {
	mem := make([]byte, 0, optical.EEPROMSize)
	for addr := 0; addr < optical.EEPROMSize; addr++ {
		b, err := apiClient.ReadEEPROM(addr)
		if err != nil {
			return nil, err
		}
		mem = append(mem, b)
	}
	return mem, nil
}

// formatDump formats mem like hexdump, 16 bytes per line with hex offsets.
func formatDump(mem []byte) string {
	var sb strings.Builder
	for off := 0; off < len(mem); off += 16 {
		end := off + 16
		if end > len(mem) {
			end = len(mem)
		}
		fmt.Fprintf(&sb, "%02x: % x\n", off, mem[off:end])
	}
	return sb.String()
}
