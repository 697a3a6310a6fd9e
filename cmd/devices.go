package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the devices the selected processor can run on",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			cfg, err := ReadConfig()
			if err != nil {
				return err
			}
			devices, err := listDevices(cfg.Device)
			if err != nil {
				return err
			}
			out := command.OutOrStdout()
			if len(devices) == 0 {
				fmt.Fprintf(out, "no %s devices\n", cfg.Device.Type)
				return nil
			}
			for i, props := range devices {
				fmt.Fprintf(out, "device %d\n", i)
				for _, p := range props {
					fmt.Fprintf(out, "  %-20s %v\n", p.Name, p.Value)
				}
			}
			return nil
		},
	}
}
