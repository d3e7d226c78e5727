// earpanel - control panel core for wireless audio devices.
//
// This is the main entry point for the earpanel daemon and its helper
// commands. The daemon owns one session: the paired device registry, the
// simulated scan and firmware operations, the equalizer and the listening
// controls. It exposes them over HTTP, WebSocket and (optionally) MQTT,
// records activity to SQLite and battery telemetry to InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"
)

// version can be set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0"
//
// When empty, the version recorded by the Go toolchain is used.
var version = ""

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C and SIGTERM so serve can shut down gracefully
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "earpanel",
		Short:         "Control panel core for wireless audio devices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default $EARPANEL_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(
		newServeCmd(),
		newPresetsCmd(),
		newCatalogCmd(),
		newMigrateCmd(),
		newVersionCmd(),
	)
	return root
}

// configPath resolves the config file: --config, then EARPANEL_CONFIG,
// then the default path.
func configPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" { //nolint:errcheck // flag is registered on the root command
		return path
	}
	if path := os.Getenv("EARPANEL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildVersion returns the ldflags version or the module version.
func buildVersion() string {
	if version != "" {
		return version
	}
	return versioninfo.Version
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "earpanel %s\n", buildVersion())
			fmt.Fprintf(out, "revision: %s\n", versioninfo.Revision)
			if !versioninfo.LastCommit.IsZero() {
				fmt.Fprintf(out, "commit time: %s\n", versioninfo.LastCommit.UTC().Format("2006-01-02T15:04:05Z"))
			}
			if versioninfo.DirtyBuild {
				fmt.Fprintln(out, "dirty: true")
			}
			return nil
		},
	}
}
