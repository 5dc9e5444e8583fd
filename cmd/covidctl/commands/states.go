package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatesCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List the states available for comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := deps.Service.States(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range view.States {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newNationalCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "national",
		Short: "Print the national summary and data caption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := deps.Service.National(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}
}
