package cli

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/stringsvc/internal/config"
	"github.com/roach88/stringsvc/internal/phrase"
	"github.com/roach88/stringsvc/internal/server"
	"github.com/roach88/stringsvc/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions

	// Listener overrides server.addr (for testing).
	Listener net.Listener
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server on server.addr.

Configuration is read from defaults, the --config file, STRINGSVC_*
environment variables and the flags below, in increasing precedence.
The server stops gracefully on SIGINT or SIGTERM.

Example:
  stringsvc serve --addr :8080
  STRINGSVC_STORE_BACKEND=sqlite stringsvc serve --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, v, cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("backend", config.BackendMemory, "store backend (memory|sqlite)")
	flags.Float64("rate-limit", 0, "requests per second, 0 disables limiting")
	flags.Int("rate-burst", 20, "rate limiter burst size")

	_ = v.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = v.BindPFlag("store.backend", flags.Lookup("backend"))
	_ = v.BindPFlag("server.rate_limit", flags.Lookup("rate-limit"))
	_ = v.BindPFlag("server.rate_burst", flags.Lookup("rate-burst"))

	return cmd
}

func runServe(opts *ServeOptions, v *viper.Viper, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("loading configuration")
	cfg, err := config.Load(v, opts.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	// Logs go to stderr so stdout stays clean for --format json.
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr(), opts.Verbose)

	st, err := openStore(cfg.Store.Backend)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()
	logger.Info("store ready", "backend", cfg.Store.Backend)
	formatter.VerboseLog("listening on %s", cfg.Server.Addr)

	srv := server.New(st,
		server.WithLogger(logger),
		server.WithParser(phrase.NewCachedParser(cfg.NLP.CacheSize)),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
	)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeouts := server.Timeouts{
		Read:     cfg.Server.ReadTimeout,
		Write:    cfg.Server.WriteTimeout,
		Shutdown: cfg.Server.ShutdownTimeout,
	}
	if opts.Listener != nil {
		err = srv.Serve(ctx, opts.Listener, timeouts)
	} else {
		err = srv.ListenAndServe(ctx, cfg.Server.Addr, timeouts)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// openStore constructs the configured backend.
func openStore(backend string) (store.Store, error) {
	switch backend {
	case config.BackendSQLite:
		return store.OpenSQLite(store.SystemClock)
	default:
		return store.NewMemory(store.SystemClock), nil
	}
}
