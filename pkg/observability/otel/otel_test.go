package otel

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestInitializeShutdown(t *testing.T) {
	ctx := context.Background()

	if IsInitialized() {
		t.Fatal("IsInitialized() should be false before Initialize()")
	}

	var buf bytes.Buffer
	err := Initialize(ctx, Config{
		ServiceName:    "blockmul-test",
		ServiceVersion: "0.0.0",
		Environment:    "test",
		Writer:         &buf,
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if !IsInitialized() {
		t.Error("IsInitialized() should be true after Initialize()")
	}

	// Double init must fail
	if err := Initialize(ctx, Config{}); err == nil {
		t.Error("Initialize() twice should fail")
	}

	_, span := Tracer().Start(ctx, "multiply")
	span.End()

	if err := Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if IsInitialized() {
		t.Error("IsInitialized() should be false after Shutdown()")
	}

	if !strings.Contains(buf.String(), "multiply") {
		t.Error("exported spans should contain the multiply span")
	}
}

func TestShutdown_NotInitialized(t *testing.T) {
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() without Initialize() error = %v", err)
	}
}
