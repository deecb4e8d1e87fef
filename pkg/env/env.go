package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func GetEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func GetEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return defaultValue
		}
		return boolValue
	}
	return defaultValue
}

// GetEnvUint64 parses an unsigned value; malformed input is an error rather than
// a silent default because the callers use it for counts and chain ids.
func GetEnvUint64(key string, defaultValue uint64) (uint64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s: %w", key, err)
	}
	return parsed, nil
}
