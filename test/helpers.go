package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sandevgo/personabot/configs"
)

const LlamaServerEnv = "LLAMA_SERVER_URL"

// Runtime is a throwaway runtime directory seeded with the default configs.
type Runtime struct {
	Dir          string
	PersonasPath string
	PolicyPath   string
	DatabasePath string
}

func NewRuntime(t *testing.T) Runtime {
	t.Helper()
	dir := t.TempDir()
	rt := Runtime{
		Dir:          dir,
		PersonasPath: filepath.Join(dir, "personas.yaml"),
		PolicyPath:   filepath.Join(dir, "policy.yaml"),
		DatabasePath: filepath.Join(dir, "personabot.db"),
	}
	if _, err := configs.WriteDefaults(rt.PersonasPath, rt.PolicyPath); err != nil {
		t.Fatalf("failed to write defaults: %v", err)
	}
	return rt
}

// GetLlamaServerURL skips the test unless a llama.cpp server address is configured.
func GetLlamaServerURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv(LlamaServerEnv)
	if url == "" {
		t.Skipf("%s not set", LlamaServerEnv)
	}
	return url
}
