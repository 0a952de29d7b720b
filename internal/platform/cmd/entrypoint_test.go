package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
	"time"
)

type testConfig struct {
	Address string `env:"CULTFACE_CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8080"`
	Demo    string `env:"CULTFACE_CMD_TEST_DEMO" envDefault:"/demo.mp4"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CULTFACE_CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("CULTFACE_CMD_TEST_DEMO", "/env-demo.mp4")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.Address, "address", cfgRef.Address, "address")
	fs.StringVar(&cfgRef.Demo, "demo", cfgRef.Demo, "demo")

	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.Address != "flag:9001" {
		t.Fatalf("expected flag value for address, got %q", cfgRef.Address)
	}
	if cfgRef.Demo != "/env-demo.mp4" {
		t.Fatalf("expected env demo, got %q", cfgRef.Demo)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceServer, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("CULTFACE_OTEL_ENDPOINT", "")
	want := errors.New("boom")

	err := RunWithTelemetry(context.Background(), ServiceServer, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("RunWithTelemetry() error = %v, want %v", err, want)
	}
}

func TestRunWithTelemetryFlushesAfterRun(t *testing.T) {
	var steps []string
	options := RunOptions{
		ShutdownTimeout: time.Second,
		Telemetry: func(_ context.Context, service string) (func(context.Context) error, error) {
			steps = append(steps, "setup:"+service)
			return func(ctx context.Context) error {
				if _, ok := ctx.Deadline(); !ok {
					t.Error("expected shutdown deadline")
				}
				steps = append(steps, "shutdown")
				return errors.New("flush failed")
			}, nil
		},
	}

	err := RunWithTelemetryAndOptions(context.Background(), ServiceSwap, options, func(context.Context) error {
		steps = append(steps, "run")
		return nil
	})
	if err != nil {
		t.Fatalf("RunWithTelemetryAndOptions() error = %v", err)
	}
	want := []string{"setup:swap", "run", "shutdown"}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", steps, want)
		}
	}
}

func TestRunWithTelemetrySetupError(t *testing.T) {
	ran := false
	options := RunOptions{
		Telemetry: func(context.Context, string) (func(context.Context) error, error) {
			return nil, errors.New("exporter down")
		},
	}
	err := RunWithTelemetryAndOptions(context.Background(), ServiceServer, options, func(context.Context) error {
		ran = true
		return nil
	})
	if err == nil || ran {
		t.Fatalf("expected setup error without running, err=%v ran=%t", err, ran)
	}
}
