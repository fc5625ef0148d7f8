package openai

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/mentatproj/mentat/internal/apiserver/service/llm/entity"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/helper"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/spi"
	"github.com/mentatproj/mentat/internal/pkg/options"
)

const Name = "openai"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{PluginName: Name},
	}
}

func (p *Plugin) BuildChatModel(ctx context.Context, pcfg *options.ProviderConfig, modelID string, params *entity.LLMParams) (model.ToolCallingChatModel, error) {
	return helper.NewOpenAICompatibleChatModel(ctx, pcfg, modelID, params)
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://api.openai.com/v1",
		APIKey:  "${OPENAI_API_KEY}",
		API:     "openai-completions",
		Models: []options.ModelDefinition{
			{ID: "gpt-4o", Name: "GPT-4o", Reasoning: false, Input: []string{"text"}, ContextWindow: 131072, MaxTokens: 16384, Cost: options.ModelCost{Input: 2.5, Output: 10, CacheRead: 1.25}},
			{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Reasoning: false, Input: []string{"text"}, ContextWindow: 131072, MaxTokens: 16384, Cost: options.ModelCost{Input: 0.15, Output: 0.6, CacheRead: 0.075}},
		},
	}
}
