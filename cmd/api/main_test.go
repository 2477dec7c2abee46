package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lllypuk/threads/internal/config"
)

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		logLevel    string
		environment string
		expected    string
	}{
		{"production by app environment", "info", "production", "production"},
		{"production wins over debug", "debug", "production", "production"},
		{"development when debug", "debug", "development", "development"},
		{"unknown otherwise", "info", "staging", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Log.Level = tt.logLevel
			cfg.App.Environment = tt.environment
			assert.Equal(t, tt.expected, getEnvironment(cfg))
		})
	}
}

func TestGracefulShutdown_OnContextCancel(t *testing.T) {
	c := newTestContainer(t, unreachableConfig())
	server := SetupServer(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gracefulShutdown(ctx, cancel, server, c, slog.New(slog.DiscardHandler))
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}
