// cmd/serve.go
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Bitlatte/ctfsite/internal/server"
	"github.com/Bitlatte/ctfsite/internal/watch"
	"github.com/Bitlatte/ctfsite/internal/writeups"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally",
	Long: `The serve command serves the site directory over HTTP. Directory URLs without
a trailing slash, or without an index.html, are redirected to the home page.

With --watch it also regenerates the writeup index whenever the writeups
directory changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := appConfig.Serve
		if cfg.Watch {
			var mu sync.Mutex
			rebuild := func() {
				mu.Lock()
				defer mu.Unlock()
				logger.Info("Rebuilding writeup index due to changes...")
				if _, err := writeups.Run(appConfig.Index, logger); err != nil {
					logger.Error("error during rebuild", zap.Error(err))
				}
			}
			rebuild()

			w := &watch.Watcher{
				Root:     appConfig.Index.Root,
				Ignore:   []string{appConfig.Index.OutputPath()},
				Logger:   logger,
				OnChange: rebuild,
			}
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Error("watcher stopped", zap.Error(err))
				}
			}()
		}

		srv := &server.Server{
			Addr:            fmt.Sprintf(":%d", cfg.Port),
			Dir:             cfg.Dir,
			Logger:          logger,
			ShutdownTimeout: cfg.ShutdownTimeout,
		}
		logger.Info("Press Ctrl+C to stop the server.")
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8000, "Port to serve the site on")
	serveCmd.Flags().String("dir", "ctf_site", "Directory to serve")
	serveCmd.Flags().Bool("watch", false, "Regenerate the writeup index when writeups change")
	bindFlag(serveCmd.Flags(), "port", "serve.port")
	bindFlag(serveCmd.Flags(), "dir", "serve.dir")
	bindFlag(serveCmd.Flags(), "watch", "serve.watch")
	rootCmd.AddCommand(serveCmd)
}
