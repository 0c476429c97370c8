package otel

import (
	"context"
	"testing"
)

func TestNewProviders_EmptyEndpoint_IsNoop(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "securetask")
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil {
		t.Fatal("TracerProvider is nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "http://", "securetask"); err == nil {
		t.Error("want error for endpoint without host")
	}
}
