package core

import "time"

const (
	AppName      = "PersonaBot"
	AppVersion   = "0.1.0"
	AppUserAgent = AppName + "/" + AppVersion
)

// PersonaDefinition is a named character the assistant speaks as.
// Immutable once loaded.
type PersonaDefinition struct {
	CharacterID       string   `yaml:"id" json:"id"`
	Name              string   `yaml:"name" json:"name"`
	BackgroundText    string   `yaml:"background" json:"background"`
	PersonalityTraits []string `yaml:"personality" json:"personality,omitempty"`
	SpeakingStyleText string   `yaml:"speaking_style" json:"speaking_style,omitempty"`
	KnowledgeAreas    []string `yaml:"knowledge_areas" json:"knowledge_areas,omitempty"`
	InteractionGoal   string   `yaml:"interaction_goal" json:"interaction_goal,omitempty"`
}

// PolicyBlock holds the behavioral rules applied to every generation.
// ToneDescriptors and ProhibitedTopics are informational; composition only uses Text.
type PolicyBlock struct {
	Text             string   `yaml:"text" json:"text"`
	ToneDescriptors  []string `yaml:"tone" json:"tone,omitempty"`
	ProhibitedTopics []string `yaml:"prohibited_topics" json:"prohibited_topics,omitempty"`
}

// ConversationTurn is one user message and the assistant reply to it,
// scoped to a single (user, character) pair.
type ConversationTurn struct {
	ID                    int64     `json:"id,omitempty"`
	UserID                string    `json:"user_id"`
	CharacterID           string    `json:"character_id"`
	UserMessageText       string    `json:"user_message"`
	AssistantResponseText string    `json:"assistant_response"`
	CreatedAt             time.Time `json:"created_at"`
}

type CompositionRequest struct {
	UserID          string
	CharacterID     string
	UserMessageText string
	MaxHistoryTurns int
	MaxTotalLength  int
}

type ComposedPrompt struct {
	PromptText       string `json:"prompt"`
	Truncated        bool   `json:"truncated"`
	Degraded         bool   `json:"degraded"`
	TurnsIncluded    int    `json:"turns_included"`
	HistoryAvailable int    `json:"history_available"`
}

// GenerationParams are passed to the generation backend next to the prompt.
type GenerationParams struct {
	MaxTokens   int
	Temperature float32
	Stop        []string
}
