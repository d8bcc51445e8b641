package gateway

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorzero/tensorzero-go/internal/gatewaytest"
)

func TestHealth(t *testing.T) {
	server := gatewaytest.NewServer()
	defer server.Close()
	server.SetResponse("/health", gatewaytest.HealthOK())

	client := newTestClient(t, server, Config{})
	health, err := client.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ok", health["gateway"])
	assert.Equal(t, "ok", health["clickhouse"])
	assert.True(t, health.Healthy())
}

func TestHealthDegraded(t *testing.T) {
	t.Run("component not ok", func(t *testing.T) {
		server := gatewaytest.NewServer()
		defer server.Close()
		server.SetResponse("/health", gatewaytest.Response{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"gateway": "ok", "clickhouse": "unreachable"},
		})

		client := newTestClient(t, server, Config{})
		health, err := client.Health(context.Background())
		require.NoError(t, err)
		assert.False(t, health.Healthy())
	})

	t.Run("gateway answers 503", func(t *testing.T) {
		server := gatewaytest.NewServer()
		defer server.Close()
		server.SetResponse("/health", gatewaytest.ErrorResponse(http.StatusServiceUnavailable, "unhealthy"))

		client := newTestClient(t, server, Config{})
		_, err := client.Health(context.Background())
		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, http.StatusServiceUnavailable, gerr.StatusCode)
	})
}

func TestStatus(t *testing.T) {
	server := gatewaytest.NewServer()
	defer server.Close()
	server.SetResponse("/status", gatewaytest.StatusOK())

	client := newTestClient(t, server, Config{})
	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.NotEmpty(t, status.Version)
}
