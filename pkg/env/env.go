package env

import "os"

// Prefix namespaces the service's own variables.
const Prefix = "LIBRARY_"

// Get looks up LIBRARY_<key> first, then the bare key, then the fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
