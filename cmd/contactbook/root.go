package main

import (
	"io"

	"contactbook/internal/config"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "contactbook",
		Short:         "In-memory contact book with undo/redo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config (default $"+config.EnvConfigFile+")")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newDemoCmd(opts))
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	return config.Load(o.configPath)
}
