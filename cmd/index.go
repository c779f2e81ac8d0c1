// cmd/index.go
package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Bitlatte/ctfsite/internal/writeups"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Generates index.json for the writeups repository",
	Long: `The index command scans the writeups directory, where every top-level folder
is an event and every writeup.md below it is a writeup, reads each writeup's
frontmatter and writes the index.json manifest the site loads.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := writeups.Run(appConfig.Index, logger)
		if errors.Is(err, writeups.ErrRootNotFound) {
			logger.Error("Directory not found", zap.String("path", appConfig.Index.Root))
		}
		return err
	},
}

func init() {
	indexCmd.Flags().String("root", "external-writeups", "Writeups directory to scan")
	indexCmd.Flags().StringP("output", "o", "", "Output file (default <root>/index.json)")
	indexCmd.Flags().String("format", writeups.FormatJSON, "Output format: json or yaml")
	indexCmd.Flags().Bool("derive-descriptions", false, "Use a writeup's first paragraph when it has no description")
	bindFlag(indexCmd.Flags(), "root", "index.root")
	bindFlag(indexCmd.Flags(), "output", "index.output")
	bindFlag(indexCmd.Flags(), "format", "index.format")
	bindFlag(indexCmd.Flags(), "derive-descriptions", "index.deriveDescriptions")
	rootCmd.AddCommand(indexCmd)
}
