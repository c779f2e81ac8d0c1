// cmd/hugo.go
package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Bitlatte/ctfsite/internal/hugo"
)

var hugoCmd = &cobra.Command{
	Use:   "hugo",
	Short: "Creates _index.md section files for Hugo",
	Long: `The hugo command walks the CTF content directory and writes an _index.md into
every folder, using the folder's README.md as the section body and a banner.*
image as the section image when one is present.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := hugo.NewPreparer(appConfig.Hugo, logger).Prepare()
		if err != nil {
			if errors.Is(err, hugo.ErrRootNotFound) {
				logger.Error("Directory not found", zap.String("path", appConfig.Hugo.ContentDir))
			}
			return err
		}
		if res.Failed > 0 {
			logger.Warn("Some section indexes could not be written", zap.Int("failed", res.Failed))
		}
		return nil
	},
}

func init() {
	hugoCmd.Flags().String("content-dir", "content/ctf", "Hugo content directory to prepare")
	hugoCmd.Flags().Bool("banners", true, "Add a banner.* image to the section front matter")
	hugoCmd.Flags().Bool("skip-empty", true, "Skip folders with no markdown files and no subfolders")
	hugoCmd.Flags().Bool("readme-overrides", false, "Let README front matter set the section title and description")
	bindFlag(hugoCmd.Flags(), "content-dir", "hugo.contentDir")
	bindFlag(hugoCmd.Flags(), "banners", "hugo.banners")
	bindFlag(hugoCmd.Flags(), "skip-empty", "hugo.skipEmpty")
	bindFlag(hugoCmd.Flags(), "readme-overrides", "hugo.readmeOverrides")
	rootCmd.AddCommand(hugoCmd)
}
