// Package env reads cotest's process-level configuration defaults.
package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Get gets an environment variable value from a set of raw "NAME=value"
// strings, such as os.Environ(). Exposed mainly so config resolution is
// testable without mutating the real process environment.
func Get(environ []string, name string) string {
	var value string
	for _, s := range environ {
		n, v, ok := strings.Cut(s, "=")
		if ok && n == name {
			value = v
		}
	}
	return value
}

// DeadlockTimeout reads COTEST_DEADLOCK_TIMEOUT, falling back to def if
// unset or unparsable.
func DeadlockTimeout(def time.Duration) time.Duration {
	v := os.Getenv("COTEST_DEADLOCK_TIMEOUT")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// LogLevel reads COTEST_LOG_LEVEL ("debug", "info", "warn", "error"),
// falling back to def if unset or unrecognized.
func LogLevel(def string) string {
	v := os.Getenv("COTEST_LOG_LEVEL")
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return strings.ToLower(v)
	default:
		return def
	}
}

// EventBusCapacity reads COTEST_EVENT_BUS_CAPACITY, falling back to def
// if unset or unparsable.
func EventBusCapacity(def int) int {
	v := os.Getenv("COTEST_EVENT_BUS_CAPACITY")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
