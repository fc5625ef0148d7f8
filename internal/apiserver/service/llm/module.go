// Package llm resolves provider configurations and builds tool-calling
// chat models through the provider plugin registry.
package llm

import (
	"context"
	"fmt"
	"sort"

	"github.com/cloudwego/eino/components/model"

	"github.com/mentatproj/mentat/internal/apiserver/service/llm/entity"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/spi"
	"github.com/mentatproj/mentat/internal/pkg/options"
	"github.com/mentatproj/mentat/pkg/logger"
)

// Config is the LLM module configuration.
type Config struct {
	ModelOptions *options.ModelOptions

	// Registry supplies the provider plugins. Defaults to the in-tree set.
	Registry *provider.Registry
}

// CompletedConfig is the completed configuration for the LLM module.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.ModelOptions == nil {
		c.ModelOptions = options.NewModelOptions()
	}
	if c.Registry == nil {
		c.Registry = provider.NewInTreeRegistry()
	}

	return CompletedConfig{c}
}

type resolvedProvider struct {
	plugin spi.ChatModelPlugin
	config *options.ProviderConfig
}

// Module exposes the resolved provider set.
type Module struct {
	providers       map[string]*resolvedProvider
	defaultProvider string
	defaultModel    string
}

// New resolves the provider set: in "merge" mode the user configuration
// overlays each plugin's defaults, in "replace" mode only user-named
// providers survive. User providers without a matching plugin are
// skipped with a warning.
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	opts := c.ModelOptions
	m := &Module{
		providers:       make(map[string]*resolvedProvider),
		defaultProvider: opts.DefaultProvider,
		defaultModel:    opts.DefaultModel,
	}

	for _, name := range c.Registry.List() {
		if opts.Mode == "replace" {
			if _, ok := opts.Providers[name]; !ok {
				continue
			}
		}

		factory, err := c.Registry.Get(name)
		if err != nil {
			return nil, err
		}
		plugin := factory()

		cfg := plugin.DefaultConfig()
		if user, ok := opts.Providers[name]; ok {
			mergeProviderConfig(cfg, user)
		}

		m.providers[name] = &resolvedProvider{plugin: plugin, config: cfg}
	}

	for name := range opts.Providers {
		if _, ok := m.providers[name]; !ok {
			logger.Warn("[LLM] provider %q has no plugin, skipping", name)
		}
	}

	if len(m.providers) == 0 {
		return nil, fmt.Errorf("no LLM providers resolved")
	}

	if m.defaultProvider == "" {
		m.defaultProvider = m.Providers()[0]
	}
	if _, ok := m.providers[m.defaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %q is not resolved", m.defaultProvider)
	}
	if m.defaultModel == "" {
		models := m.providers[m.defaultProvider].config.Models
		if len(models) > 0 {
			m.defaultModel = models[0].ID
		}
	}

	logger.Info("[LLM] module initialized (%d providers, default %s/%s)",
		len(m.providers), m.defaultProvider, m.defaultModel)
	return m, nil
}

// mergeProviderConfig overlays non-empty user fields on the defaults.
// A non-empty user model list replaces the default list wholesale.
func mergeProviderConfig(base, user *options.ProviderConfig) {
	if user.BaseURL != "" {
		base.BaseURL = user.BaseURL
	}
	if user.APIKey != "" {
		base.APIKey = user.APIKey
	}
	if user.API != "" {
		base.API = user.API
	}
	if user.AuthHeader != nil {
		base.AuthHeader = user.AuthHeader
	}
	if len(user.Headers) > 0 {
		base.Headers = user.Headers
	}
	if len(user.Models) > 0 {
		base.Models = user.Models
	}
}

// Providers returns the resolved provider ids, sorted.
func (m *Module) Providers() []string {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models returns the model definitions of one provider.
func (m *Module) Models(providerID string) ([]options.ModelDefinition, error) {
	p, ok := m.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", providerID)
	}
	return p.config.Models, nil
}

// Defaults returns the default provider and model ids.
func (m *Module) Defaults() (string, string) {
	return m.defaultProvider, m.defaultModel
}

// BuildChatModel constructs a tool-calling chat model. Empty provider or
// model ids fall back to the configured defaults. When the provider
// declares a model list, the model id must be on it.
func (m *Module) BuildChatModel(ctx context.Context, providerID, modelID string, params *entity.LLMParams) (model.ToolCallingChatModel, error) {
	if providerID == "" {
		providerID = m.defaultProvider
	}
	if modelID == "" {
		modelID = m.defaultModel
	}

	p, ok := m.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", providerID)
	}
	if modelID == "" {
		return nil, fmt.Errorf("provider %q: no model specified and no default configured", providerID)
	}
	if len(p.config.Models) > 0 {
		if _, found := p.config.FindModel(modelID); !found {
			return nil, fmt.Errorf("provider %q does not serve model %q", providerID, modelID)
		}
	}

	return p.plugin.BuildChatModel(ctx, p.config, modelID, params)
}
