package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vozinv/vozinv/internal/server"
	"github.com/vozinv/vozinv/pkg/core/config"
	coregrpc "github.com/vozinv/vozinv/pkg/core/grpc"
	"github.com/vozinv/vozinv/pkg/core/health"
	"github.com/vozinv/vozinv/pkg/core/logging"
)

const (
	healthInterval  = 10 * time.Second
	grpcDialTimeout = time.Second
	shutdownTimeout = 5 * time.Second
)

var (
	serveHost string
	servePort int
	serveGRPC bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inicia el servidor de transcripciones",
	Long: `Inicia el servidor WebSocket de transcripciones y, si está
habilitado, el servidor gRPC con el servicio estándar de salud.

Endpoints:
  ws://HOST:PORT/ws        flujo de transcripciones (JSON)
  http://HOST:PORT/healthz estado de salud
  HOST:GRPC_PORT           grpc.health.v1.Health

Con un archivo de configuración, los cambios en [listener] y
[currency] se aplican a las conexiones nuevas sin reiniciar.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host del servidor WebSocket")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "puerto del servidor WebSocket")
	serveCmd.Flags().BoolVar(&serveGRPC, "grpc", false, "habilita el servidor gRPC de salud")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cfg)

	logger := newLogger(cfg, cfg.General.Name, cmd.ErrOrStderr())

	srvCfg, err := server.ConfigFrom(cfg)
	if err != nil {
		return err
	}
	srv := server.New(srvCfg, logger.Named("server"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() { errCh <- srv.Start() }()

	var grpcSrv *coregrpc.Server
	if cfg.GRPC.Enabled {
		grpcSrv = coregrpc.NewServer(coregrpc.ServerConfigFrom(cfg.GRPC), logger.Named("grpc"))
		srv.HealthRegistry().Register(grpcListenerCheck(cfg))
		go grpcSrv.FollowRegistry(ctx, srv.HealthRegistry(), healthInterval)
		go func() { errCh <- grpcSrv.Start() }()
	}

	if path != "" {
		go watchConfig(ctx, path, srv, logger)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "vozinv escuchando en ws://%s/ws\n", cfg.ServerAddress())
	if grpcSrv != nil {
		fmt.Fprintf(out, "gRPC health en %s\n", cfg.GRPCAddress())
	}
	fmt.Fprintln(out, "Ctrl+C para terminar")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error("server failed", "error", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.StopWithTimeout(shutdownCtx)
	}
	if err := srv.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// grpcListenerCheck reports whether the gRPC port accepts connections
func grpcListenerCheck(cfg *config.Config) health.Checker {
	return health.TCPCheck("grpc", cfg.GRPCAddress(), grpcDialTimeout)
}

func applyServeFlags(cfg *config.Config) {
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveGRPC {
		cfg.GRPC.Enabled = true
	}
}

// watchConfig hot-reloads the session settings of new connections
func watchConfig(ctx context.Context, path string, srv *server.Server, logger *logging.Logger) {
	onChange := func(cfg *config.Config) {
		applyServeFlags(cfg)
		srvCfg, err := server.ConfigFrom(cfg)
		if err != nil {
			logger.Warn("config reload rejected", "error", err)
			return
		}
		srv.Reconfigure(srvCfg)
	}
	onError := func(err error) {
		logger.Warn("config reload failed", "path", path, "error", err)
	}

	if err := config.Watch(ctx, path, onChange, onError); err != nil {
		logger.Warn("config watch disabled", "path", path, "error", err)
	}
}
