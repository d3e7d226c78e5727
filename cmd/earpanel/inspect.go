package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nerrad567/earpanel-core/internal/device"
	"github.com/nerrad567/earpanel-core/internal/equalizer"
	"github.com/nerrad567/earpanel-core/internal/status"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List equalizer presets and their band gains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "PRESET\t%s\n", strings.Join(equalizer.Frequencies(), "\t"))
			for _, name := range equalizer.Presets() {
				bands, err := equalizer.PresetBands(name)
				if err != nil {
					return err
				}
				cells := make([]string, 0, len(bands))
				for _, g := range bands {
					cells = append(cells, fmt.Sprintf("%+d", g))
				}
				fmt.Fprintf(tw, "%s\t%s\n", name, strings.Join(cells, "\t"))
			}
			return tw.Flush()
		},
	}
}

func newCatalogCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print a device catalog",
		Long: "Loads the device catalog (the built-in one unless --file is given), " +
			"validates it and prints paired and discoverable devices.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(file)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tICON\tBATTERY\tFIRMWARE\tSTATE")
			for _, d := range cat.Devices {
				state := "paired"
				if d.IsConnected {
					state = "connected"
				}
				printCatalogRow(tw, d, state)
			}
			for _, d := range cat.Discoverable {
				printCatalogRow(tw, d, "discoverable")
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog YAML file")
	return cmd
}

func printCatalogRow(tw *tabwriter.Writer, d device.Device, state string) {
	battery := "-"
	if low, ok := status.LowestBattery(d); ok {
		battery = fmt.Sprintf("%d%% (%s)", low.Level, low.Severity)
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		d.ID, d.Name, d.Type, status.DeviceIcon(d.Type), battery, d.FirmwareVersion, state)
}

// loadCatalog reads path, or the built-in catalog when path is empty.
func loadCatalog(path string) (*device.Catalog, error) {
	if path == "" {
		cat, err := device.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("loading built-in catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := device.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return cat, nil
}
