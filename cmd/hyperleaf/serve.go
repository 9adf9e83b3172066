package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/rpc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// #region serve
func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over gRPC",
		Long: `Loads the weight file once and serves hyperleaf.v1.PredictService plus the
standard gRPC health service. When the weights cannot be loaded the server
still starts, reports NOT_SERVING and answers predictions with
FailedPrecondition.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			m, err := a.loadModel(a.cfg.Model.WeightsPath)
			if err != nil {
				a.logger.Warn("serving without a model", zap.String("weights", a.cfg.Model.WeightsPath), zap.Error(err))
				m = nil
			} else {
				a.logger.Info("model loaded", zap.String("weights", a.cfg.Model.WeightsPath))
			}
			p, err := a.newPredictor(m)
			if err != nil {
				return err
			}

			opts := []rpc.ServerOption{
				rpc.WithServerLogger(a.logger.Named("rpc")),
				rpc.WithMaxMessageBytes(a.cfg.Server.MaxMessageBytes),
			}
			if a.cfg.History.Enabled {
				store, err := history.NewStore(a.cfg.History.DBPath)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, rpc.WithHistory(store))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = rpc.NewServer(p, opts...).ListenAndServe(ctx, addr)
			if err != nil && ctx.Err() == nil {
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

// #endregion serve
