package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arborlabs/keytree/internal/observability"
	"github.com/arborlabs/keytree/internal/server"
	"github.com/arborlabs/keytree/internal/server/handlers"
	"github.com/arborlabs/keytree/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server exposing the storage backend: object CRUD
under /v1/objects, shallow and deep listings under /v1/list, plus
health and version endpoints.

Examples:
  keytree serve --base-dir /srv/store
  keytree serve --backend s3 --bucket my-bucket --region us-west-2
  KEYTREE_SERVER_PORT=9090 keytree serve --base-dir /srv/store`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)
	registerStoreFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides configuration)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides configuration)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadStoreConfig(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	handlers.InitHealthManager(versionInfo.Version)
	handlers.GetHealthManager().RegisterChecker("store", storeChecker(st))

	srv := server.New(cfg.Server.Host, cfg.Server.Port,
		server.WithStore(st),
		server.WithLogger(logger),
		server.WithThrottle(cfg.Server.RPS),
		server.WithVersion(handlers.VersionInfo{
			Version:   versionInfo.Version,
			Commit:    versionInfo.Commit,
			BuildDate: versionInfo.BuildDate,
		}),
	)

	logger.Info("starting server",
		zap.String("addr", srv.Addr()),
		zap.String("backend", backendType(st).String()))

	timeouts := server.Timeouts{
		Read:  cfg.Server.ReadTimeout,
		Write: cfg.Server.WriteTimeout,
		Idle:  cfg.Server.IdleTimeout,
	}
	if err := srv.Start(ctx, timeouts, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("server failed", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
	}
	return nil
}

// storeChecker probes the backend with a shallow root listing.
func storeChecker(st store.Store) handlers.CheckerFunc {
	return func(ctx context.Context) error {
		_, err := st.List(ctx, store.ListOptions{})
		return err
	}
}
