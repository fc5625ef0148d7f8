package llm

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"

	"github.com/mentatproj/mentat/internal/apiserver/service/llm/entity"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/spi"
	"github.com/mentatproj/mentat/internal/pkg/options"
)

type fakePlugin struct {
	name     string
	defaults *options.ProviderConfig
	built    []string // "provider/model" per BuildChatModel call
	lastCfg  *options.ProviderConfig
}

func (f *fakePlugin) Name() string { return f.name }

func (f *fakePlugin) DefaultConfig() *options.ProviderConfig { return f.defaults }

func (f *fakePlugin) BuildChatModel(ctx context.Context, cfg *options.ProviderConfig, modelID string, params *entity.LLMParams) (model.ToolCallingChatModel, error) {
	f.built = append(f.built, f.name+"/"+modelID)
	f.lastCfg = cfg
	return nil, nil
}

func testRegistry(plugins ...*fakePlugin) *provider.Registry {
	r := provider.NewRegistry()
	for _, p := range plugins {
		p := p
		r.MustRegister(p.name, func() spi.ChatModelPlugin { return p })
	}
	return r
}

func TestModule_MergeOverlaysDefaults(t *testing.T) {
	plugin := &fakePlugin{
		name: "alpha",
		defaults: &options.ProviderConfig{
			BaseURL: "https://default.example/v1",
			APIKey:  "${ALPHA_API_KEY}",
			Models:  []options.ModelDefinition{{ID: "alpha-base"}},
		},
	}

	opts := options.NewModelOptions()
	opts.Providers["alpha"] = &options.ProviderConfig{
		BaseURL: "https://proxy.example/v1",
		Models:  []options.ModelDefinition{{ID: "alpha-pro"}},
	}

	cfg := Config{ModelOptions: opts, Registry: testRegistry(plugin)}
	mod, err := cfg.Complete().New(context.Background())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := mod.BuildChatModel(context.Background(), "alpha", "alpha-pro", nil); err != nil {
		t.Fatalf("BuildChatModel() error: %v", err)
	}
	if plugin.lastCfg.BaseURL != "https://proxy.example/v1" {
		t.Fatalf("user base url should overlay default, got %q", plugin.lastCfg.BaseURL)
	}
	if plugin.lastCfg.APIKey != "${ALPHA_API_KEY}" {
		t.Fatalf("untouched fields must keep defaults, got %q", plugin.lastCfg.APIKey)
	}

	if _, err := mod.BuildChatModel(context.Background(), "alpha", "alpha-base", nil); err == nil {
		t.Fatalf("user model list should replace defaults wholesale")
	}
}

func TestModule_ReplaceModeKeepsOnlyUserProviders(t *testing.T) {
	alpha := &fakePlugin{name: "alpha", defaults: &options.ProviderConfig{BaseURL: "https://a/v1", Models: []options.ModelDefinition{{ID: "a1"}}}}
	beta := &fakePlugin{name: "beta", defaults: &options.ProviderConfig{BaseURL: "https://b/v1", Models: []options.ModelDefinition{{ID: "b1"}}}}

	opts := options.NewModelOptions()
	opts.Mode = "replace"
	opts.Providers["beta"] = &options.ProviderConfig{BaseURL: "https://b.example/v1"}

	cfg := Config{ModelOptions: opts, Registry: testRegistry(alpha, beta)}
	mod, err := cfg.Complete().New(context.Background())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	got := mod.Providers()
	if len(got) != 1 || got[0] != "beta" {
		t.Fatalf("expected only beta resolved, got %v", got)
	}
}

func TestModule_DefaultsResolution(t *testing.T) {
	alpha := &fakePlugin{name: "alpha", defaults: &options.ProviderConfig{BaseURL: "https://a/v1", Models: []options.ModelDefinition{{ID: "a1"}, {ID: "a2"}}}}

	cfg := Config{ModelOptions: options.NewModelOptions(), Registry: testRegistry(alpha)}
	mod, err := cfg.Complete().New(context.Background())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	providerID, modelID := mod.Defaults()
	if providerID != "alpha" || modelID != "a1" {
		t.Fatalf("expected defaults alpha/a1, got %s/%s", providerID, modelID)
	}

	// Empty ids route to the defaults.
	if _, err := mod.BuildChatModel(context.Background(), "", "", nil); err != nil {
		t.Fatalf("BuildChatModel() with defaults error: %v", err)
	}
	if len(alpha.built) != 1 || alpha.built[0] != "alpha/a1" {
		t.Fatalf("expected build via defaults, got %v", alpha.built)
	}
}

func TestModule_UnknownProviderAndModel(t *testing.T) {
	alpha := &fakePlugin{name: "alpha", defaults: &options.ProviderConfig{BaseURL: "https://a/v1", Models: []options.ModelDefinition{{ID: "a1"}}}}

	cfg := Config{ModelOptions: options.NewModelOptions(), Registry: testRegistry(alpha)}
	mod, err := cfg.Complete().New(context.Background())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := mod.BuildChatModel(context.Background(), "ghost", "a1", nil); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if _, err := mod.BuildChatModel(context.Background(), "alpha", "missing", nil); err == nil {
		t.Fatalf("expected error for model not on the provider's list")
	}
}

func TestModule_EmptyModelListAllowsAnyModel(t *testing.T) {
	local := &fakePlugin{name: "local", defaults: &options.ProviderConfig{BaseURL: "http://127.0.0.1:11434"}}

	opts := options.NewModelOptions()
	opts.DefaultProvider = "local"
	opts.DefaultModel = "llama3.3"

	cfg := Config{ModelOptions: opts, Registry: testRegistry(local)}
	mod, err := cfg.Complete().New(context.Background())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := mod.BuildChatModel(context.Background(), "local", "anything-goes", nil); err != nil {
		t.Fatalf("providers without a model list must accept any id: %v", err)
	}
}
