package services

import "fmt"

// ConfigError reports a missing or invalid setting. It is fatal for the
// call and is never retried.
type ConfigError struct{ Message string }

func (e *ConfigError) Error() string { return e.Message }

// UpstreamError wraps any failure of the completion backend, including a
// blank reply.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return fmt.Sprintf("%s API call failed with unknown error", e.Provider)
	}
	return fmt.Sprintf("%s API call failed: %s", e.Provider, e.Err.Error())
}

func (e *UpstreamError) Unwrap() error { return e.Err }
