package main

import (
	"github.com/spf13/cobra"

	"github.com/strongdm/apmcore/pkg/config"
)

func newInfoCmd(flags *loadFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the effective options, secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := flags.load()
			if err != nil {
				return err
			}
			renderInfo(cmd, snap, all)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include the kind and usage of every option")
	return cmd
}

func renderInfo(cmd *cobra.Command, snap *config.Snapshot, all bool) {
	table := defaultTable(cmd.OutOrStdout())
	if all {
		table.SetHeader([]string{"Option", "Value", "Kind", "Usage"})
	} else {
		table.SetHeader([]string{"Option", "Value"})
	}

	for _, v := range snap.Redacted() {
		row := []string{v.Key, v.Value}
		if all {
			opt, _ := config.Lookup(v.Key)
			row = append(row, opt.Kind.String(), opt.Usage)
		}
		table.Append(row)
	}
	table.Render()
}
