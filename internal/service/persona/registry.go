package persona

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/sandevgo/personabot/pkg/log"
)

var _ core.PersonaLister = (*Registry)(nil)

var errInvalidPersona = errors.New("invalid persona")

// Registry maps character ids to personas. Readers never lock; Reload swaps
// in a freshly built map so in-flight lookups see either the old or the new set.
type Registry struct {
	source  Source
	entries atomic.Pointer[map[string]core.PersonaDefinition]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRegistry(source Source) *Registry {
	r := &Registry{source: source}
	empty := map[string]core.PersonaDefinition{}
	r.entries.Store(&empty)
	return r
}

// NewStaticRegistry builds a registry from an in-memory set with no source.
func NewStaticRegistry(defs []core.PersonaDefinition) (*Registry, error) {
	r := NewRegistry(nil)
	if err := r.Reload(defs); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) Lookup(characterID string) (core.PersonaDefinition, error) {
	p, ok := (*r.entries.Load())[characterID]
	if !ok {
		return core.PersonaDefinition{}, fmt.Errorf("persona %q: %w", characterID, core.ErrNotFound)
	}
	return p, nil
}

// List returns all personas sorted by id.
func (r *Registry) List() []core.PersonaDefinition {
	m := *r.entries.Load()
	out := make([]core.PersonaDefinition, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CharacterID < out[j].CharacterID })
	return out
}

// Reload validates defs and replaces the whole set. An empty set is rejected.
// On error the current set is kept.
func (r *Registry) Reload(defs []core.PersonaDefinition) error {
	if len(defs) == 0 {
		return fmt.Errorf("%w: no personas defined", errInvalidPersona)
	}
	next := make(map[string]core.PersonaDefinition, len(defs))
	for i, d := range defs {
		d.CharacterID = strings.TrimSpace(d.CharacterID)
		if d.CharacterID == "" {
			return fmt.Errorf("%w: entry %d has no id", errInvalidPersona, i)
		}
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("%w: %q has no name", errInvalidPersona, d.CharacterID)
		}
		if _, dup := next[d.CharacterID]; dup {
			return fmt.Errorf("%w: duplicate id %q", errInvalidPersona, d.CharacterID)
		}
		d.PersonalityTraits = append([]string(nil), d.PersonalityTraits...)
		d.KnowledgeAreas = append([]string(nil), d.KnowledgeAreas...)
		next[d.CharacterID] = d
	}
	r.entries.Store(&next)
	return nil
}

// Load performs the initial read from the source.
func (r *Registry) Load(ctx context.Context) error {
	if r.source == nil {
		return nil
	}
	defs, err := r.source.Load(ctx)
	if err != nil {
		return err
	}
	if err := r.Reload(defs); err != nil {
		return err
	}
	log.FromCtx(ctx).Info().Int("count", len(defs)).Msg("personas loaded")
	return nil
}

// Start applies source updates until ctx ends or Shutdown is called.
func (r *Registry) Start(ctx context.Context) error {
	if r.source == nil {
		<-ctx.Done()
		return nil
	}

	ctx = log.WithComponent(ctx, "persona")
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel, r.done = cancel, done
	r.mu.Unlock()
	defer close(done)

	updates, err := r.source.Watch(watchCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch personas: %w", err)
	}

	logger := log.FromCtx(ctx)
	for defs := range updates {
		if err := r.Reload(defs); err != nil {
			logger.Error().Err(err).Msg("rejected persona update, keeping previous set")
			continue
		}
		logger.Info().Int("count", len(defs)).Msg("personas reloaded")
	}
	return nil
}

func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
