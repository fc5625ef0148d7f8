// Package helper carries shared plugin plumbing: the embeddable base
// plugin, env resolution, and the OpenAI-compatible build path.
package helper

import (
	"os"
	"strings"

	"github.com/mentatproj/mentat/internal/pkg/options"
)

// BasePlugin supplies the Name and DefaultConfig boilerplate providers
// embed.
type BasePlugin struct {
	PluginName string
}

func (b *BasePlugin) Name() string {
	return b.PluginName
}

// DefaultConfig returns an empty configuration; providers override it.
func (b *BasePlugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{}
}

// ResolveEnvValue resolves "${ENV_VAR}" references in a string.
func ResolveEnvValue(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envKey := s[2 : len(s)-1]
		return os.Getenv(envKey)
	}
	return s
}

// MaxTokensFor returns the configured output ceiling for a model id,
// falling back to a safe default.
func MaxTokensFor(cfg *options.ProviderConfig, modelID string) int {
	if def, ok := cfg.FindModel(modelID); ok && def.MaxTokens > 0 {
		return def.MaxTokens
	}
	return 4096
}

// IsReasoningModel reports whether the model is declared as reasoning.
func IsReasoningModel(cfg *options.ProviderConfig, modelID string) bool {
	def, ok := cfg.FindModel(modelID)
	return ok && def.Reasoning
}
