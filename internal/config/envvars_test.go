// ABOUTME: Tests for environment variable expansion in config
// ABOUTME: Validates ${VAR} replacement from the process env and from .env files

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnv_Set(t *testing.T) {
	t.Setenv("INTENTD_TEST_ROOM", "pairing")
	result := expandEnv("${INTENTD_TEST_ROOM}", os.Getenv)
	if result != "pairing" {
		t.Errorf("expandEnv = %q; want %q", result, "pairing")
	}
}

func TestExpandEnv_Unset(t *testing.T) {
	result := expandEnv("${DEFINITELY_NOT_SET_12345}", os.Getenv)
	if result != "" {
		t.Errorf("expandEnv = %q; want empty for unset var", result)
	}
}

func TestExpandEnv_Mixed(t *testing.T) {
	t.Setenv("MY_HOST", "localhost")
	result := expandEnv("https://${MY_HOST}:8080/v1", os.Getenv)
	if result != "https://localhost:8080/v1" {
		t.Errorf("expandEnv = %q; want %q", result, "https://localhost:8080/v1")
	}
}

func TestResolveEnvVarsWith_ProcessEnvWins(t *testing.T) {
	t.Setenv("INTENTD_TEST_PORT", "7000")

	s := &Settings{Broadcast: BroadcastSettings{
		Listen:  "127.0.0.1:${INTENTD_TEST_PORT}",
		Command: "relay --token ${INTENTD_TEST_TOKEN}",
	}}
	ResolveEnvVarsWith(s, map[string]string{
		"INTENTD_TEST_PORT":  "9999",
		"INTENTD_TEST_TOKEN": "abc",
	})

	if s.Broadcast.Listen != "127.0.0.1:7000" {
		t.Errorf("Listen = %q", s.Broadcast.Listen)
	}
	if s.Broadcast.Command != "relay --token abc" {
		t.Errorf("Command = %q", s.Broadcast.Command)
	}
}

func TestLoadFiles_DotEnvBesideConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	writeFile(t, cfg, "broadcast:\n  command: \"relay ${INTENTD_DOTENV_ROOM}\"\n")
	writeFile(t, filepath.Join(dir, ".env"), "INTENTD_DOTENV_ROOM=standup\n")

	s, err := LoadFiles(cfg)
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if s.Broadcast.Command != "relay standup" {
		t.Errorf("Command = %q, want %q", s.Broadcast.Command, "relay standup")
	}
}
