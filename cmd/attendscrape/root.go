// cmd/attendscrape/root.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/AttendScrapexter/internal/config"
)

type globalOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "attendscrape",
		Short:         "Fetch MITS IMS attendance from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default $ATTENDSCRAPE_CONFIG)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "show technical error details and debug logs")

	root.AddCommand(
		newScrapeCmd(opts),
		newBunkCmd(),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	file := o.configFile
	if file == "" {
		file = os.Getenv("ATTENDSCRAPE_CONFIG")
	}
	return config.Load(file)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "attendscrape %s\n", version)
			fmt.Fprintf(out, "Build time: %s\n", buildTime)
			fmt.Fprintf(out, "Git commit: %s\n", gitCommit)
		},
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(args[0])
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", args[0], err)
				return &exitError{code: 1, err: err}
			}
			result := cfg.ValidateWithDetails()
			for _, w := range result.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "! %s\n", w)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (defaults, file, environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return config.SaveToWriter(cfg, cmd.OutOrStdout())
		},
	})

	return cmd
}
