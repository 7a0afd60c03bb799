package policy

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/sandevgo/personabot/internal/core"
	"gopkg.in/yaml.v3"
)

var _ core.PolicyProvider = (*Provider)(nil)

// Default is used when no policy file is configured.
var Default = core.PolicyBlock{
	Text: "You are a friendly, respectful AI companion. Stay in character, keep replies " +
		"concise and engaging, and never produce hateful, sexual, or violent content. " +
		"If a user asks for medical, legal, or financial advice, gently suggest a qualified professional.",
	ToneDescriptors:  []string{"friendly", "respectful", "engaging"},
	ProhibitedTopics: []string{"hate speech", "explicit content", "violence"},
}

// Provider serves one policy block process-wide. Set swaps it atomically.
type Provider struct {
	block atomic.Pointer[core.PolicyBlock]
}

func NewProvider(block core.PolicyBlock) *Provider {
	p := &Provider{}
	p.Set(block)
	return p
}

func (p *Provider) PolicyBlock() core.PolicyBlock {
	return *p.block.Load()
}

func (p *Provider) Set(block core.PolicyBlock) {
	block.ToneDescriptors = append([]string(nil), block.ToneDescriptors...)
	block.ProhibitedTopics = append([]string(nil), block.ProhibitedTopics...)
	p.block.Store(&block)
}

// LoadFile reads a policy YAML file. The text field is required.
func LoadFile(path string) (core.PolicyBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.PolicyBlock{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (core.PolicyBlock, error) {
	var block core.PolicyBlock
	if err := yaml.Unmarshal(data, &block); err != nil {
		return core.PolicyBlock{}, fmt.Errorf("failed to parse policy: %w", err)
	}
	block.Text = strings.TrimSpace(block.Text)
	if block.Text == "" {
		return core.PolicyBlock{}, fmt.Errorf("policy text is empty: %w", core.ErrInvalidArgument)
	}
	return block, nil
}
