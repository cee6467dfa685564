package grpcapi_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/harborlog/server/internal/grpcapi"
)

func TestHealth_ServingLifecycle(t *testing.T) {
	srv, err := grpcapi.NewServer("127.0.0.1:0", log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	status, err := grpcapi.Check(context.Background(), srv.Addr(), grpcapi.ServiceName)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING before the store is open, got %s", status)
	}

	srv.SetServing(true)
	status, err = grpcapi.Check(context.Background(), srv.Addr(), "")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %s", status)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
