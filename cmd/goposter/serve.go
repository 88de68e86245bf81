// serve.go — HTTP API command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xob0t/GoPoster/clients/server"
	"github.com/xob0t/GoPoster/pkg/logging"
	"github.com/xob0t/GoPoster/pkg/template"
)

func (a *app) serveCmd() *cobra.Command {
	var addr, dir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API over a templates directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if dir != "" {
				cfg.Templates.Dir = dir
			}
			log := logging.WithComponent("serve")

			store := template.NewStore()
			defer store.Close()
			n, warnings, err := store.LoadDir(cfg.Templates.Dir, cfg.NormalizeOptions())
			if err != nil {
				return err
			}
			for _, w := range warnings {
				log.Warn().Msg(w)
			}
			log.Info().Int("templates", n).Str("dir", cfg.Templates.Dir).Msg("templates loaded")

			fm, err := cfg.FontManager()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg, store, fm).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	cmd.Flags().StringVar(&dir, "templates", "", "Templates directory (default: templates.dir)")
	return cmd
}
