// Package env reads process settings that are needed before config.Load runs,
// such as the log format used by the bootstrap logger.
package env

import (
	"os"
	"strings"
)

const prefix = "GUDANG_"

// Get returns GUDANG_<key> when set, then the bare key, then fallback.
func Get(key, fallback string) string {
	if val, ok := Lookup(key); ok {
		return val
	}
	return fallback
}

// Lookup reports the first non-blank value among GUDANG_<key> and key.
func Lookup(key string) (string, bool) {
	key = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(key)), prefix)
	if key == "" {
		return "", false
	}
	for _, name := range []string{prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val, true
		}
	}
	return "", false
}
