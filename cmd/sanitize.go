// File: cmd/sanitize.go
package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/domunify/pkg/sanitize"
)

func newSanitizeCmd() *cobra.Command {
	var out string

	sanitizeCmd := &cobra.Command{
		Use:   "sanitize <file>",
		Short: "Strips script elements and inline event handlers from markup",
		Long: `Strips script elements and on* attributes from an HTML file. This is a
minimal cleaner for trusted markup, not a defense against hostile input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := afero.ReadFile(appFs, args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			return writeOutput(cmd, out, []byte(sanitize.Clean(string(raw))))
		},
	}
	sanitizeCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return sanitizeCmd
}
