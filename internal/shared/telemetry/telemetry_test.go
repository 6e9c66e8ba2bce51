package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInit_MetricsOnly(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{
		ServiceName: "emailsummary-test",
		Environment: "test",
		MetricsPort: "0",
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestNewMetricsServer(t *testing.T) {
	srv := newMetricsServer("9464")
	if srv.Addr != ":9464" {
		t.Errorf("Addr = %q, want :9464", srv.Addr)
	}
	if srv.Handler == nil {
		t.Error("metrics handler not set")
	}
}

func TestNewResource_MergesWithSDKDefaults(t *testing.T) {
	res, err := newResource(Config{ServiceName: "emailsummary-test", Environment: "test"})
	if err != nil {
		t.Fatalf("newResource() error = %v", err)
	}

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["service.name"] != "emailsummary-test" {
		t.Errorf("service.name = %q, want emailsummary-test", attrs["service.name"])
	}
	if attrs["deployment.environment.name"] != "test" {
		t.Errorf("deployment.environment.name = %q, want test", attrs["deployment.environment.name"])
	}
}
