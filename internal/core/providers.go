package core

import "context"

type PersonaLookup interface {
	Lookup(characterID string) (PersonaDefinition, error)
}

type PersonaLister interface {
	PersonaLookup
	List() []PersonaDefinition
}

type PolicyProvider interface {
	PolicyBlock() PolicyBlock
}

type Composer interface {
	Compose(ctx context.Context, req CompositionRequest) (ComposedPrompt, error)
}

// Generator turns a composed prompt into model output.
type Generator interface {
	Complete(ctx context.Context, prompt string, params GenerationParams) (string, error)
}
