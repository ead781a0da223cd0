package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
	"github.com/vozinv/vozinv/pkg/core/config"
	coregrpc "github.com/vozinv/vozinv/pkg/core/grpc"
	"github.com/vozinv/vozinv/pkg/core/health"
)

var (
	statusTimeout time.Duration
	statusGRPC    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Muestra el estado de un servidor en ejecución",
	Long: `Consulta /healthz del servidor WebSocket y, con --grpc o si
[grpc] está habilitado, el servicio grpc.health.v1.Health.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 5*time.Second, "tiempo máximo por consulta")
	statusCmd.Flags().BoolVar(&statusGRPC, "grpc", false, "consulta también el servidor gRPC")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "vozinv status")
	fmt.Fprintln(out, "=============")

	healthy := printHTTPStatus(ctx, out, cfg)
	if statusGRPC || cfg.GRPC.Enabled {
		healthy = printGRPCStatus(ctx, out, cfg) && healthy
	}

	if !healthy {
		return mdwerror.New("servidor no disponible").
			WithCode(mdwerror.CodeServiceUnavailable).
			WithOperation("status")
	}
	return nil
}

func printHTTPStatus(ctx context.Context, out io.Writer, cfg *config.Config) bool {
	addr := cfg.ServerAddress()
	report, err := fetchHealth(ctx, "http://"+addr+"/healthz")
	if err != nil {
		fmt.Fprintf(out, "  [-] %-12s %s - %v\n", "WebSocket", addr, err)
		return false
	}

	icon := "[+]"
	if !report.Healthy() {
		icon = "[-]"
	}
	fmt.Fprintf(out, "  %s %-12s %s - %s (v%s, uptime %s)\n",
		icon, "WebSocket", addr, report.Status, report.Version, report.Uptime.Truncate(time.Second))
	for _, check := range report.Checks {
		fmt.Fprintf(out, "        %-10s %-9s %s\n", check.Name, check.Status, check.Message)
	}
	return report.Healthy()
}

func fetchHealth(ctx context.Context, url string) (*health.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("invalid health response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &report, nil
}

func printGRPCStatus(ctx context.Context, out io.Writer, cfg *config.Config) bool {
	addr := cfg.GRPCAddress()
	clientCfg := coregrpc.DefaultClientConfig(addr)
	clientCfg.Timeout = statusTimeout

	status, err := coregrpc.Probe(ctx, clientCfg, coregrpc.ServiceName)
	if err != nil {
		fmt.Fprintf(out, "  [-] %-12s %s - %v\n", "gRPC", addr, err)
		return false
	}

	serving := status == healthpb.HealthCheckResponse_SERVING
	icon := "[+]"
	if !serving {
		icon = "[-]"
	}
	fmt.Fprintf(out, "  %s %-12s %s - %s\n", icon, "gRPC", addr, status)
	return serving
}
