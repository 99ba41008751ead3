package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/census-explorer/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr    string
	servePrefill bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive HTTP dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           server.New(a.sess, a.log, a.metrics, a.reg).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.log.Info("dashboard listening", slog.String("addr", "http://"+addr))
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard at http://%s (Ctrl+C to stop)\n", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		})
		if servePrefill {
			g.Go(func() error {
				// A failed warm-up is reported per request later.
				if _, err := a.table(gctx); err != nil {
					a.log.Warn("prefill failed", slog.String("error", err.Error()))
				}
				return nil
			})
		}
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			a.log.Info("shutting down dashboard")
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default listen_addr from config)")
	serveCmd.Flags().BoolVar(&servePrefill, "prefill", true, "fetch the table at startup")
}
