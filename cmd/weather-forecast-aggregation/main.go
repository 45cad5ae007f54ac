package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	output     string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "weather",
		Short:         "Weather forecast aggregation",
		Long:          "Current conditions and timezone-aware daily forecasts for saved or searched locations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose && cmd.Name() != "serve" {
				log.SetOutput(io.Discard)
			}
			switch output {
			case formatText, formatJSON, formatYAML:
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (use text, json or yaml)", output)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", formatText, "output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(currentCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(favoritesCmd())
	rootCmd.AddCommand(unitCmd())

	return rootCmd
}
