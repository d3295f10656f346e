// Package env reads process environment variables with a fallback, for
// the few settings looked up before config loading (log format, port).
package env

import "os"

// Get returns the named variable, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
