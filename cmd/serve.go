package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/config"
	"github.com/tanpawarit/Chative-Travel-Concierge/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat boundary over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		serverCfg, err := configx.New[server.Config]("")
		if err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); !debug {
			gin.SetMode(gin.ReleaseMode)
		}

		opts := []server.Option{server.WithGatherer(a.gatherer)}
		if a.orders != nil {
			opts = append(opts, server.WithOrders(a.orders))
		}
		srv, err := server.New(a.orchestrator, a.transcripts, *serverCfg, opts...)
		if err != nil {
			return err
		}

		addr := a.cfg.HTTPAddr
		if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
			addr = flagAddr
		}
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address, overrides HTTP_ADDR")
	serveCmd.Flags().Bool("debug", false, "Run gin in debug mode")
}
