package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reelmatch/internal/api"
	"reelmatch/internal/httpapi"
	"reelmatch/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			ctx.logger = logging.WithSessionID(logger, uuid.NewString())

			addr := cfg.Server.Bind
			if strings.TrimSpace(bind) != "" {
				addr = bind
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return ctx.withService(runCtx, func(svc *api.RecommendationService) error {
				return httpapi.New(addr, svc, ctx.logger).Run(runCtx)
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to server.bind)")
	return cmd
}
