// File: cmd/build.go
package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/domunify/internal/observability"
	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

func newBuildCmd() *cobra.Command {
	var out string

	buildCmd := &cobra.Command{
		Use:   "build <config.(json|yaml)>",
		Short: "Renders a declarative element config as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			logger := observability.GetLogger().Named("build")

			raw, err := afero.ReadFile(appFs, args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			layout, err := decodeFile(args[0], raw)
			if err != nil {
				return err
			}

			doc := dom.NewDocument(logger)
			c := unify.Detached(doc, cursorOptions(cfg, logger)...).Add(layout)
			defer c.Close()
			if len(c.LastAdded()) == 0 {
				logger.Warn("Config produced no elements.", zap.String("file", args[0]))
			}
			return writeOutput(cmd, out, []byte(c.HTML()))
		},
	}
	buildCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return buildCmd
}
