package util

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// LoadEnv loads ".env.<env>" (falling back to ".env") into the process
// environment. Variables already present in the environment win.
func LoadEnv(env string) error {
	candidates := []string{".env." + env, ".env"}
	for _, name := range candidates {
		f, err := os.Open(name)
		if err != nil {
			continue
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key, value, found := strings.Cut(line, "=")
			if !found {
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.Trim(strings.TrimSpace(value), `"'`)
			if _, exists := os.LookupEnv(key); !exists {
				os.Setenv(key, value)
			}
		}
		return scanner.Err()
	}
	return fmt.Errorf("no env file found for %q", env)
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvDefault returns the value of key, or def when unset or empty.
func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetIntEnv(key string) int64 {
	return cast.ToInt64(os.Getenv(key))
}

// GetIntEnvDefault returns the integer value of key, or def when unset
// or unparsable-as-zero.
func GetIntEnvDefault(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	return cast.ToInt64(v)
}

func GetBoolEnv(key string) bool {
	return cast.ToBool(os.Getenv(key))
}
