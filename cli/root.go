// Package cli implements wfctl, a command line front end for the compositor IPC.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"wayfire-ipc/client"
	"wayfire-ipc/config"
	"wayfire-ipc/logging"
	"wayfire-ipc/middleware"
)

type ctxKey string

const appKey ctxKey = "app"

// app is what every subcommand needs once the root has connected.
type app struct {
	client  *client.Client
	log     *zap.Logger
	out     Formatter
	metrics *http.Server
}

// Execute builds the root command and runs it, cancelling on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath string
		output  string
	)
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "wfctl",
		Short:         "Talk to the Wayfire compositor over its IPC socket",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			out, err := NewFormatter(output)
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			cli, err := client.ConnectConfig(cmd.Context(), cfg,
				client.WithLogger(log),
				client.WithMiddleware(middleware.NewMetrics(reg).Middleware()),
			)
			if err != nil {
				return err
			}
			a := &app{client: cli, log: log, out: out}
			if cfg.MetricsAddr != "" {
				if a.metrics, err = serveMetrics(cfg.MetricsAddr, reg, log); err != nil {
					cli.Close()
					return err
				}
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a := getApp(cmd)
			if a.metrics != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = a.metrics.Shutdown(ctx)
			}
			_ = a.log.Sync()
			return a.client.Close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (yaml|toml|json)")
	flags.StringVarP(&output, "output", "o", "json", "output format: json|yaml")
	flags.String("socket", "", "compositor socket (default $"+config.EnvSocket+")")
	flags.String("log-level", "", "debug|info|warn|error|off")
	flags.Duration("timeout", 0, "per-call timeout; a timed out call ends the session")
	flags.Float64("rate", 0, "maximum calls per second, 0 for unlimited")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	_ = v.BindPFlag("socket", flags.Lookup("socket"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = v.BindPFlag("rate", flags.Lookup("rate"))
	_ = v.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))

	cmd.AddCommand(newQueryCmds()...)
	cmd.AddCommand(newActionCmds()...)
	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newToggleAlphaCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func getApp(cmd *cobra.Command) *app {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*app)
}

// print writes v in the selected format.
func (a *app) print(cmd *cobra.Command, v any) error {
	s, err := a.out.Format(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), s)
	return err
}

// serveMetrics exposes reg on addr until the returned server is shut down.
func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) (*http.Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: l.Addr().String(), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", srv.Addr))
	return srv, nil
}
