package client

import (
	"net/http"
	"os"
	"time"
)

// Client is the HTTP client the demo uses to talk to the dubbing server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new pipeline client. Uploads can be large, so the
// timeout is generous.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
