// File: cmd/collect.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domunify/internal/observability"
	"github.com/xkilldash9x/domunify/pkg/persist"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

func newCollectCmd() *cobra.Command {
	var (
		selector string
		mode     string
		format   string
		out      string
		toKV     string
		save     bool
		filename string
	)

	collectCmd := &cobra.Command{
		Use:   "collect <file>",
		Short: "Collects the bound data of an HTML document",
		Long: `Collects the data bound to the selected elements of an HTML document.
Modes are flat, nested and form. One selected element yields its data
unwrapped; several yield a list. With --save the result is written to
download.dir under save.filename instead of stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			logger := observability.GetLogger().Named("collect")

			if save && toKV != "" {
				return fmt.Errorf("give either --save or --to-kv, not both")
			}
			if mode == "" {
				mode = cfg.Save().Mode
			}
			if format == "" {
				format = cfg.Save().Format
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

			if save {
				opts := cfg.Save().Options()
				opts.Mode = mode
				opts.Format = persist.Format(format)
				if filename != "" {
					opts.Filename = filename
				}
				var saveErr error
				opts.OnError = func(err error) { saveErr = err }
				c.Save(opts)
				if saveErr != nil {
					return fmt.Errorf("failed to save: %w", saveErr)
				}
				logger.Info("Saved collected data", zap.String("dir", cfg.Download().Dir), zap.String("filename", opts.Filename))
				return nil
			}

			results, err := c.Get(mode)
			if err != nil {
				return fmt.Errorf("failed to collect: %w", err)
			}
			var data any = results
			if len(results) == 1 {
				data = results[0]
			}

			content, _, err := persist.Encode(persist.Format(format), data, cfg.Save().Indent)
			if err != nil {
				return err
			}
			logger.Debug("Collected data", zap.String("file", args[0]), zap.Int("elements", len(results)), zap.String("mode", mode))

			if toKV != "" {
				encoded, err := persist.MarshalJSON(data, 0)
				if err != nil {
					return err
				}
				err = withKV(cmd.Context(), cfg.KV(), logger, func(ctx context.Context, kv persist.KV) error {
					return kv.Put(ctx, toKV, encoded)
				})
				if err != nil {
					return fmt.Errorf("failed to store %q: %w", toKV, err)
				}
				logger.Info("Stored collected data", zap.String("key", toKV))
			}
			return writeOutput(cmd, out, content)
		},
	}

	collectCmd.Flags().StringVarP(&selector, "select", "s", "", "CSS or XPath selector of the elements to collect (default: body)")
	collectCmd.Flags().StringVarP(&mode, "mode", "m", "", "collection mode: flat, nested or form (default from save.mode)")
	collectCmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, csv, yaml or text (default from save.format)")
	collectCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	collectCmd.Flags().BoolVar(&save, "save", false, "save into download.dir instead of printing")
	collectCmd.Flags().StringVar(&filename, "filename", "", "file name for --save (default from save.filename)")
	collectCmd.Flags().StringVar(&toKV, "to-kv", "", "also store the data as JSON under this key in the kv store")
	return collectCmd
}
