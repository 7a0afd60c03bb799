package core

import "errors"

var (
	// ErrNotFound is returned when a characterId does not resolve to a persona.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned by history stores that cannot be reached.
	ErrUnavailable = errors.New("unavailable")

	// ErrPromptTooLarge means the fixed blocks and user message exceed the budget on their own.
	ErrPromptTooLarge = errors.New("prompt too large")

	ErrInvalidArgument = errors.New("invalid argument")

	// ErrGeneration wraps failures of the generation backend.
	ErrGeneration = errors.New("generation failed")
)
