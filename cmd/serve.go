// =============================================================================
// Expense Intake - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   expense-intake serve [--addr :8080]
//
// Runs the HTTP API until SIGINT or SIGTERM, then drains in-flight requests.
// Reports are kept in memory for the lifetime of the process.
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ginjaninja78/expense-intake/internal/api"
	"github.com/ginjaninja78/expense-intake/internal/fileparser"
	"github.com/ginjaninja78/expense-intake/internal/pipeline"
	"github.com/ginjaninja78/expense-intake/internal/reports"
	"github.com/ginjaninja78/expense-intake/internal/reports/inmemory"
	"github.com/ginjaninja78/expense-intake/internal/validation"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds the wait for in-flight requests.
const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = env.cfg.Server.Addr
	}

	v := validation.New(env.ref)
	api.Version = Version

	srv := api.New(env.cfg.Server, api.Deps{
		Orchestrator: pipeline.New(v, pipeline.WithParser(fileparser.New(env.cfg.CSV))),
		Reports:      reports.NewService(inmemory.New(), v),
		RefData:      env.ref,
	}, env.log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	env.log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
