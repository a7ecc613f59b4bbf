// ABOUTME: Environment variable expansion in config string fields
// ABOUTME: ${VAR} resolves from the process env, then from .env files beside the config files

package config

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"

	pilog "github.com/mauromedda/intentd/internal/log"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns in string fields of Settings from
// the process environment.
func ResolveEnvVars(s *Settings) {
	ResolveEnvVarsWith(s, nil)
}

// ResolveEnvVarsWith expands ${VAR} patterns, consulting fallback for names
// the process environment does not define.
func ResolveEnvVarsWith(s *Settings, fallback map[string]string) {
	lookup := func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return fallback[name]
	}
	s.LogLevel = expandEnv(s.LogLevel, lookup)
	s.Broadcast.Command = expandEnv(s.Broadcast.Command, lookup)
	s.Broadcast.Listen = expandEnv(s.Broadcast.Listen, lookup)
}

// expandEnv replaces ${VAR} with lookup(VAR). Unknown vars become "".
func expandEnv(s string, lookup func(string) string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return lookup(varName)
	})
}

// dotenvLookup reads the .env file next to each config file. Later files
// win, matching the config merge order.
func dotenvLookup(configPaths []string) map[string]string {
	vars := make(map[string]string)
	for _, p := range configPaths {
		envPath := filepath.Join(filepath.Dir(p), ".env")
		m, err := godotenv.Read(envPath)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				pilog.Warn("config: reading %s: %v", envPath, err)
			}
			continue
		}
		for k, v := range m {
			vars[k] = v
		}
	}
	return vars
}
