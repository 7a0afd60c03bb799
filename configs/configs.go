// Package configs ships the default persona and policy files.
package configs

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed personas.yaml
var Personas []byte

//go:embed policy.yaml
var Policy []byte

// WriteDefaults creates missing persona and policy files. Existing files are left untouched.
// It returns the paths it created.
func WriteDefaults(personasPath, policyPath string) ([]string, error) {
	var created []string
	for _, f := range []struct {
		path string
		data []byte
	}{
		{personasPath, Personas},
		{policyPath, Policy},
	} {
		ok, err := writeIfMissing(f.path, f.data)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, f.path)
		}
	}
	return created, nil
}

func writeIfMissing(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
