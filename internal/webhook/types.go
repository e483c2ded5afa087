package webhook

import (
	"context"

	"github.com/Thuenen-Forest-Ecosystems/TFM-hook/internal/refresh"
)

// Refresher runs one verify → pull → restart cycle for a webhook call.
type Refresher interface {
	Handle(ctx context.Context, payload []byte, signature string) (*refresh.Result, error)
}

// RefreshResponse is the JSON response for /hook/refresh.
type RefreshResponse struct {
	Message string          `json:"message"`
	Results *refresh.Result `json:"results,omitempty"`
}

// ErrorResponse is the JSON response for request-level errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON response for /health.
type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp string       `json:"timestamp"`
	Config    HealthConfig `json:"config"`
}

// HealthConfig summarizes the loaded configuration without exposing it.
type HealthConfig struct {
	Repositories   int  `json:"repositories"`
	DockerServices int  `json:"dockerServices"`
	HasSecret      bool `json:"hasSecret"`
}

// InfoResponse is the JSON response for the root endpoint.
type InfoResponse struct {
	Service           string   `json:"service"`
	Version           string   `json:"version"`
	Endpoints         []string `json:"endpoints"`
	ConfigFingerprint string   `json:"config_fingerprint,omitempty"`
}
