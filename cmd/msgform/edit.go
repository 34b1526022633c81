package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-msgform/pkg/renderers/tui"
)

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit a message interactively and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			binding, err := a.open(ctx, cmd)
			if err != nil {
				return err
			}

			opts := []tui.Option{
				tui.WithLogger(a.logger),
				tui.WithTheme(tui.Theme{ErrorPrefix: "✗ "}),
			}
			if a.driver != nil {
				opts = append(opts, tui.WithPromptDriver(a.driver))
			} else {
				opts = append(opts, tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())))
			}
			if err := tui.New(binding.Widget, opts...).Run(ctx); err != nil {
				return err
			}

			out, err := binding.Current()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
