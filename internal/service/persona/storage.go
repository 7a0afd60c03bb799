package persona

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/pkg/log"
	"gopkg.in/yaml.v3"
)

const defaultWatchInterval = time.Second

// Source yields persona definitions. Watch emits a full set on every change.
type Source interface {
	Load(ctx context.Context) ([]core.PersonaDefinition, error)
	Watch(ctx context.Context) (<-chan []core.PersonaDefinition, error)
}

type document struct {
	Personas []core.PersonaDefinition `yaml:"personas"`
}

// FileSource reads personas from a YAML file with a top-level "personas" list.
type FileSource struct {
	path     string
	interval time.Duration
}

func NewFileSource(path string, interval time.Duration) *FileSource {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return &FileSource{path: path, interval: interval}
}

func (f *FileSource) Load(_ context.Context) ([]core.PersonaDefinition, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read personas file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a personas YAML document.
func Parse(data []byte) ([]core.PersonaDefinition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse personas: %w", err)
	}
	return doc.Personas, nil
}

// Watch polls the file's mtime. A file that fails to parse is logged and skipped,
// so the last good set stays active.
func (f *FileSource) Watch(ctx context.Context) (<-chan []core.PersonaDefinition, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat personas file: %w", err)
	}
	lastMod := info.ModTime()
	updates := make(chan []core.PersonaDefinition)

	go func() {
		defer close(updates)

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(f.path)
				if err != nil {
					lastMod = time.Time{}
					continue
				}
				if !info.ModTime().After(lastMod) {
					continue
				}

				defs, err := f.Load(ctx)
				if err != nil {
					log.FromCtx(ctx).Error().Err(err).Str("path", f.path).Msg("failed to reload personas")
					continue
				}
				lastMod = info.ModTime()

				select {
				case updates <- defs:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, nil
}
