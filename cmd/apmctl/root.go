package main

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strongdm/apmcore/pkg/config"
)

var errInvalidArgs = errors.New("invalid args")

// loadFlags are shared by every command reading the configuration.
type loadFlags struct {
	envFile    string
	configFile string
	envPrefix  string
}

func (f *loadFlags) load() (*config.Snapshot, error) {
	snap, err := config.Load(config.LoadOptions{
		EnvFile:    f.envFile,
		ConfigFile: f.configFile,
		EnvPrefix:  f.envPrefix,
	})
	if err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return snap, nil
}

func newRootCmd() *cobra.Command {
	flags := &loadFlags{}
	root := &cobra.Command{
		Use:   "apmctl",
		Short: "Inspect the configuration of the error reporting core",

		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", ".env file loaded before reading the environment")
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&flags.envPrefix, "env-prefix", config.DefaultEnvPrefix, "prefix of the environment variables")

	root.AddCommand(
		newInfoCmd(flags),
		newMatchCmd(flags),
		newVersionCmd(),
	)
	return root
}

// Execute runs apmctl and returns its exit code.
func Execute() int {
	return execute(newRootCmd(), os.Args[1:], os.Stderr)
}

func execute(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Cause(err) == errInvalidArgs:
		fmt.Fprintln(stderr, err)
		// EX_USAGE
		return 64
	default:
		fmt.Fprintln(stderr, "apmctl:", err)
		return 1
	}
}

func defaultTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator(" ")
	table.SetRowSeparator("-")
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}
