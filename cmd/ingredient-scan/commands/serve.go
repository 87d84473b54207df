package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"ingredient-scanner/internal/server"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scan sessions and the word lists over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := g.runtime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if !g.verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			go func() {
				if err := rt.WatchLists(ctx); err != nil {
					g.logger.Warn().Err(err).Msg("word list watch stopped")
				}
			}()

			sc := g.cfg.Server
			if addr == "" {
				addr = sc.Addr
			}
			srv := server.New(server.Options{
				Lists:          rt.Lists,
				NewSession:     rt.NewSession,
				Logger:         g.logger,
				MaxUploadBytes: sc.MaxUploadBytes,
				SessionTTL:     sc.SessionTTL,
			})
			return srv.Run(ctx, addr, sc.ReadTimeout, sc.WriteTimeout, sc.GracefulShutdown)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
