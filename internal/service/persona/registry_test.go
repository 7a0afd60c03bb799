package persona

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/personabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	aura = core.PersonaDefinition{
		CharacterID:       "love_guru",
		Name:              "Aura",
		BackgroundText:    "A gentle relationship counselor.",
		PersonalityTraits: []string{"warm", "patient"},
	}
	bard = core.PersonaDefinition{
		CharacterID: "rhyme_bard",
		Name:        "Quill",
	}
)

type chanSource struct {
	initial []core.PersonaDefinition
	updates chan []core.PersonaDefinition
}

func (s *chanSource) Load(context.Context) ([]core.PersonaDefinition, error) {
	return s.initial, nil
}

func (s *chanSource) Watch(ctx context.Context) (<-chan []core.PersonaDefinition, error) {
	out := make(chan []core.PersonaDefinition)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case defs := <-s.updates:
				select {
				case out <- defs:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func TestRegistry_Lookup(t *testing.T) {
	r, err := NewStaticRegistry([]core.PersonaDefinition{aura, bard})
	require.NoError(t, err)

	p, err := r.Lookup("love_guru")
	require.NoError(t, err)
	assert.Equal(t, "Aura", p.Name)

	_, err = r.Lookup("nonexistent")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRegistry_List(t *testing.T) {
	r, err := NewStaticRegistry([]core.PersonaDefinition{bard, aura})
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "love_guru", list[0].CharacterID)
	assert.Equal(t, "rhyme_bard", list[1].CharacterID)
}

func TestRegistry_ReloadValidation(t *testing.T) {
	tests := []struct {
		name string
		defs []core.PersonaDefinition
	}{
		{name: "empty set", defs: []core.PersonaDefinition{}},
		{name: "nil set", defs: nil},
		{name: "missing id", defs: []core.PersonaDefinition{{Name: "Nobody"}}},
		{name: "missing name", defs: []core.PersonaDefinition{{CharacterID: "x"}}},
		{name: "duplicate id", defs: []core.PersonaDefinition{aura, aura}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewStaticRegistry([]core.PersonaDefinition{bard})
			require.NoError(t, err)

			err = r.Reload(tt.defs)
			assert.ErrorIs(t, err, errInvalidPersona)

			_, err = r.Lookup("rhyme_bard")
			assert.NoError(t, err, "previous set must survive a rejected reload")
		})
	}
}

func TestRegistry_ReloadCopiesSlices(t *testing.T) {
	traits := []string{"warm"}
	def := aura
	def.PersonalityTraits = traits

	r, err := NewStaticRegistry([]core.PersonaDefinition{def})
	require.NoError(t, err)

	traits[0] = "cold"
	p, err := r.Lookup("love_guru")
	require.NoError(t, err)
	assert.Equal(t, []string{"warm"}, p.PersonalityTraits)
}

func TestRegistry_ConcurrentReadsDuringReload(t *testing.T) {
	r, err := NewStaticRegistry([]core.PersonaDefinition{aura})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				p, err := r.Lookup("love_guru")
				if assert.NoError(t, err) {
					assert.NotEmpty(t, p.Name)
				}
			}
		}()
	}
	for j := 0; j < 100; j++ {
		require.NoError(t, r.Reload([]core.PersonaDefinition{aura, bard}))
	}
	wg.Wait()
}

func TestRegistry_StartAppliesUpdates(t *testing.T) {
	src := &chanSource{initial: []core.PersonaDefinition{aura}, updates: make(chan []core.PersonaDefinition)}
	r := NewRegistry(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, r.Load(ctx))
	_, err := r.Lookup("rhyme_bard")
	require.ErrorIs(t, err, core.ErrNotFound)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(ctx) }()

	src.updates <- []core.PersonaDefinition{{CharacterID: "", Name: "broken"}}
	src.updates <- []core.PersonaDefinition{}
	src.updates <- []core.PersonaDefinition{aura, bard}

	assert.Eventually(t, func() bool {
		_, err := r.Lookup("rhyme_bard")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	require.NoError(t, r.Shutdown(shutdownCtx))
	assert.NoError(t, <-errCh)
}

func TestRegistry_EmptyUpdateKeepsPreviousSet(t *testing.T) {
	src := &chanSource{initial: []core.PersonaDefinition{aura}, updates: make(chan []core.PersonaDefinition)}
	r := NewRegistry(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, r.Load(ctx))

	errCh := make(chan error, 1)
	go func() { errCh <- r.Start(ctx) }()

	// Sends are unbuffered through one forwarder, so the third send returns
	// only after the first update was fully handled.
	src.updates <- []core.PersonaDefinition{}
	src.updates <- nil
	src.updates <- []core.PersonaDefinition{}

	_, err := r.Lookup("love_guru")
	assert.NoError(t, err)
	assert.Len(t, r.List(), 1)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	require.NoError(t, r.Shutdown(shutdownCtx))
	assert.NoError(t, <-errCh)
}
