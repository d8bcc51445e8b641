package gateway

import (
	"context"
	"encoding/json"
	"net/http"
)

// HealthResponse maps gateway components to their reported state, for
// example {"gateway": "ok", "clickhouse": "ok"}.
type HealthResponse map[string]string

// Healthy reports whether every component is "ok".
func (h HealthResponse) Healthy() bool {
	if len(h) == 0 {
		return false
	}
	for _, state := range h {
		if state != "ok" {
			return false
		}
	}
	return true
}

// StatusResponse is the gateway's liveness reply.
type StatusResponse struct {
	Status string `json:"status"`

	// Version is the gateway build version, when the gateway reports it.
	Version string `json:"version,omitempty"`
}

// Health checks gateway readiness, including its downstream dependencies.
// An unhealthy gateway answers non-2xx, which surfaces as *Error.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	var resp HealthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewInternalError("decoding health response", err)
	}
	return resp, nil
}

// Status checks gateway liveness.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return nil, err
	}
	var resp StatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewInternalError("decoding status response", err)
	}
	return &resp, nil
}
