package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-msgform/pkg/snapshot"
	"github.com/goliatone/go-msgform/pkg/uiloop"
)

const maxLine = 4 << 20

func newWatchCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Apply values read from stdin and print the tree after each",
		Long: `Reads one value per line from stdin (protojson or JSON), applies it to
the bound message on the engine's event loop and prints the snapshot after
every update. Lines that fail to decode are logged and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			binding, err := a.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			if output == "" {
				output = "json"
			}
			format, err := snapshot.ParseFormat(output)
			if err != nil {
				return err
			}

			m := binding.Widget
			loop := uiloop.New(
				uiloop.WithLogger(a.logger),
				uiloop.WithAfterEach(func() { m.ProcessDeferred() }),
			)
			ctx, cancel := context.WithCancel(cmd.Context())
			defer func() {
				cancel()
				<-loop.Done()
			}()
			go func() {
				_ = loop.Run(ctx)
			}()

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
			for scanner.Scan() {
				line := bytes.TrimSpace(scanner.Bytes())
				if len(line) == 0 {
					continue
				}
				value, err := binding.Decode(line)
				if err != nil {
					a.logger.Warn("skipping value", zap.Error(err))
					continue
				}
				err = loop.Call(ctx, func() error {
					if !m.UpdateFromValue(value) {
						return errors.New("update rejected")
					}
					if format == snapshot.FormatYAML {
						if _, err := fmt.Fprintln(out, "---"); err != nil {
							return err
						}
					}
					return snapshot.Encode(out, m.Snapshot(), format)
				})
				if errors.Is(err, uiloop.ErrStopped) || ctx.Err() != nil {
					return ctx.Err()
				}
				if err != nil {
					a.logger.Warn("update failed", zap.Error(err))
				}
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "yaml or json (default json)")
	return cmd
}
