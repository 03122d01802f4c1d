package utils

import (
	"context"
	"errors"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrBlocked           = errors.New("challenge page returned instead of content") // Anti-bot interstitial detected
	ErrTimeout           = errors.New("navigation or wait exceeded its budget")     // Wraps the underlying engine error
	ErrResourceExhausted = errors.New("failed to open page")                        // Engine-level page-open failure
	ErrFetchFailed       = errors.New("fetch failed after session restart")         // Wraps the error surviving the one self-heal retry
	ErrConfigValidation  = errors.New("config validation failed")
)

// IsTimeout reports whether err looks like a deadline/timeout failure.
// The rendering engine surfaces most expiries as context.DeadlineExceeded,
// but some CDP waits come back as plain errors with "timeout" in the text.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// CategorizeError maps an error to a predefined category string for logging/metrics.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrBlocked):
		return "Fetch_Blocked"
	case errors.Is(err, ErrTimeout):
		return "Fetch_Timeout"
	case errors.Is(err, ErrResourceExhausted):
		return "Resource_PageOpen"
	case errors.Is(err, ErrFetchFailed):
		if IsTimeout(err) {
			return "Fetch_FailedTimeout"
		}
		return "Fetch_Failed"
	}

	// Context errors not wrapped by our sentinels
	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	lowerMsg := strings.ToLower(err.Error())
	if strings.Contains(lowerMsg, "timeout") {
		return "Engine_TimeoutGeneric"
	}
	if strings.Contains(lowerMsg, "connection refused") {
		return "Engine_ConnectionRefused"
	}
	if strings.Contains(lowerMsg, "websocket") || strings.Contains(lowerMsg, "cdp") {
		return "Engine_Protocol"
	}

	return "Unknown"
}
