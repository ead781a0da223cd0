package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vozinv/vozinv/pkg/core/config"
	"github.com/vozinv/vozinv/pkg/core/health"
	"github.com/vozinv/vozinv/pkg/core/logging"
)

func startTestServer(t *testing.T) (*Server, *grpc.ClientConn) {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	cfg := DefaultServerConfig()
	cfg.EnableReflection = false
	srv := NewServer(cfg, logging.Discard())
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := Dial(DefaultClientConfig(lis.Addr().String()))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return srv, conn
}

func TestServerConfigFrom(t *testing.T) {
	cfg := ServerConfigFrom(config.GRPCConfig{
		Host:             "0.0.0.0",
		Port:             9999,
		EnableReflection: false,
		KeepaliveTime:    config.Duration{Duration: time.Minute},
	})

	if cfg.Host != "0.0.0.0" || cfg.Port != 9999 {
		t.Errorf("address = %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.EnableReflection {
		t.Error("reflection should be disabled")
	}
	if cfg.KeepaliveInterval != time.Minute {
		t.Errorf("KeepaliveInterval = %v", cfg.KeepaliveInterval)
	}
	if cfg.MaxRecvMsgSize == 0 {
		t.Error("MaxRecvMsgSize should keep its default")
	}
}

func TestHealthService(t *testing.T) {
	srv, conn := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := CheckHealth(ctx, conn, ServiceName)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("initial status = %v, want NOT_SERVING", status)
	}

	srv.SetServing(true)

	for _, service := range []string{ServiceName, ""} {
		status, err = CheckHealth(ctx, conn, service)
		if err != nil {
			t.Fatalf("CheckHealth(%q) error = %v", service, err)
		}
		if status != healthpb.HealthCheckResponse_SERVING {
			t.Errorf("CheckHealth(%q) = %v, want SERVING", service, status)
		}
	}
}

func TestHealthService_UnknownService(t *testing.T) {
	_, conn := startTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := CheckHealth(ctx, conn, "no.such.Service"); err == nil {
		t.Error("CheckHealth() on an unknown service should fail")
	}
}

func TestFollowRegistry(t *testing.T) {
	srv, conn := startTestServer(t)

	registry := health.NewRegistry("vozinv", "test")
	registry.Register(health.ProbeCheck("parser", func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.FollowRegistry(ctx, registry, 10*time.Millisecond)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := CheckHealth(ctx, conn, ServiceName)
		if err == nil && status == healthpb.HealthCheckResponse_SERVING {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server never reported SERVING")
}

func TestProbe_Unreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	lis.Close()

	cfg := DefaultClientConfig(addr)
	cfg.Timeout = 200 * time.Millisecond

	if _, err := Probe(context.Background(), cfg, ServiceName); err == nil {
		t.Error("Probe() against a closed port should fail")
	}
}

func TestAddress(t *testing.T) {
	srv := NewServer(DefaultServerConfig(), logging.Discard())
	if srv.Address() != "localhost:9390" {
		t.Errorf("Address() = %q", srv.Address())
	}
}
