package narrative

import (
	"log/slog"
	"os"
	"time"
)

const (
	// EnvLifepathMode is the environment variable name for mode selection.
	EnvLifepathMode = "LIFEPATH_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewClient creates a narrative client based on the LIFEPATH_MODE
// environment variable. If LIFEPATH_MODE=MOCK, returns a MockClient;
// otherwise a real HTTP client. An empty baseURL disables the provider
// entirely (nil client, builtins only).
func NewClient(baseURL, apiKey, model string, timeout time.Duration, log *slog.Logger) Client {
	if os.Getenv(EnvLifepathMode) == ModeMock {
		log.Info("LIFEPATH_MODE=MOCK detected, using mock narrative client")
		return NewMockClient()
	}
	if baseURL == "" {
		log.Info("no narrative provider configured, builtin generators only")
		return nil
	}
	return NewHTTPClient(baseURL, apiKey, model, timeout)
}
