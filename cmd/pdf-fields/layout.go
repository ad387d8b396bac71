package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pdf-fields/internal/layout"
)

func newLayoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Work with layout exchange files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <layout.json|->",
		Short: "Check a layout file against the configured rules and print it normalized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			// the current layout is kept when the new one is rejected
			if err := a.layout.Replace(r); err != nil {
				return err
			}
			if err := layout.ValidateConfig(a.rules, a.layout.Current()); err != nil {
				return err
			}
			return a.layout.Export(cmd.OutOrStdout())
		},
	})
	return cmd
}
