package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cxd309/roadnav/internal/server"
)

func ServeCmd(a *app) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "serve navigation sessions over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(a.cfg, a.log).Run(ctx)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return c
}
