// File: cmd/fill.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domunify/internal/observability"
	"github.com/xkilldash9x/domunify/pkg/binder"
	"github.com/xkilldash9x/domunify/pkg/persist"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

func newFillCmd() *cobra.Command {
	var (
		selector     string
		clearMissing bool
		out          string
		fromKV       string
	)

	fillCmd := &cobra.Command{
		Use:   "fill <file> [data]",
		Short: "Fills an HTML document with JSON or YAML data",
		Long: `Fills the selected elements of an HTML document and prints the result
with live control state written back into attributes. A list of records is
distributed across the selected elements; an object goes to each of them.
The data comes from a file or, with --from-kv, from the kv store.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			logger := observability.GetLogger().Named("fill")

			var data any
			switch {
			case len(args) == 2 && fromKV != "":
				return fmt.Errorf("give either a data file or --from-kv, not both")
			case len(args) == 2:
				raw, err := afero.ReadFile(appFs, args[1])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[1], err)
				}
				if data, err = decodeFile(args[1], raw); err != nil {
					return err
				}
			case fromKV != "":
				err := withKV(cmd.Context(), cfg.KV(), logger, func(ctx context.Context, kv persist.KV) error {
					raw, found, err := kv.Get(ctx, fromKV)
					if err != nil {
						return err
					}
					if !found {
						return fmt.Errorf("no data stored under %q", fromKV)
					}
					data, err = persist.DecodeJSON(raw)
					return err
				})
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("a data file or --from-kv is required")
			}

			doc, err := loadDocument(args[0], logger)
			if err != nil {
				return err
			}
			c := unify.New(doc, rootFor(selector), cursorOptions(cfg, logger)...)
			defer c.Close()
			if c.Len() == 0 {
				return fmt.Errorf("no elements match %q", selector)
			}
			c.Fill(data, binder.FillOptions{ClearMissing: clearMissing})
			logger.Debug("Filled document", zap.String("file", args[0]), zap.Int("elements", c.Len()))

			rendered, err := renderDocument(doc)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, rendered)
		},
	}

	fillCmd.Flags().StringVarP(&selector, "select", "s", "", "CSS or XPath selector of the elements to fill (default: body)")
	fillCmd.Flags().BoolVar(&clearMissing, "clear-missing", false, "reset controls whose key is absent from the data")
	fillCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	fillCmd.Flags().StringVar(&fromKV, "from-kv", "", "read the data stored under this key in the kv store")
	return fillCmd
}
