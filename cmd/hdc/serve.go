package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rgonek/html-docusaurus-converter/extract"
	"github.com/rgonek/html-docusaurus-converter/server"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion and extraction HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				opts.app.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				Extractor: extract.New(extract.Options{
					Timeout:   opts.app.FetchTimeout,
					UserAgent: opts.app.UserAgent,
				}),
				Logger: opts.logger,
			})
			return srv.Run(ctx, opts.app.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "Listen address (overrides HDC_ADDR)")
	return cmd
}
