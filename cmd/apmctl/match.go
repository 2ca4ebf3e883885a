package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newMatchCmd(flags *loadFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "match INSTRUMENTATION...",
		Short: "Report which instrumentations disable_instrumentations turns off",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.Wrap(errInvalidArgs, "match needs at least one instrumentation name")
			}
			snap, err := flags.load()
			if err != nil {
				return err
			}

			disabled := snap.DisableInstrumentations()
			table := defaultTable(cmd.OutOrStdout())
			table.SetHeader([]string{"Instrumentation", "State"})
			for _, name := range args {
				state := "enabled"
				if disabled.Match(name) {
					state = "disabled"
				}
				table.Append([]string{name, state})
			}
			table.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "\ndisable_instrumentations: %q\n", disabled.String())
			return nil
		},
	}
}
