package telemetry

import (
	"context"
	"testing"

	"github.com/milk9111/hextactics/config"
)

func TestSetupNoop(t *testing.T) {
	cases := map[string]config.TelemetryConfig{
		"disabled":    {Enabled: false, Endpoint: "http://localhost:4318"},
		"no_endpoint": {Enabled: true},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), cfg)
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			if err := shutdown(ctx); err != nil {
				t.Fatalf("noop shutdown: %v", err)
			}
		})
	}
}

func TestSetupCreatesProvider(t *testing.T) {
	// 192.0.2.0/24 is reserved for documentation, nothing is exported.
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled:  true,
		Endpoint: "http://192.0.2.1:4318",
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
