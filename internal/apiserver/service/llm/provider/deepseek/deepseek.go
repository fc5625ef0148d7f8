package deepseek

import (
	"context"

	einoDeepseek "github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino/components/model"

	"github.com/mentatproj/mentat/internal/apiserver/service/llm/entity"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/helper"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/spi"
	"github.com/mentatproj/mentat/internal/pkg/options"
)

const Name = "deepseek"

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
	conf := &einoDeepseek.ChatModelConfig{
		APIKey:      helper.ResolveEnvValue(pcfg.APIKey),
		Model:       modelID,
		Temperature: 0.7,
		MaxTokens:   helper.MaxTokensFor(pcfg, modelID),
	}

	if pcfg.BaseURL != "" {
		conf.BaseURL = pcfg.BaseURL
	}

	applyParamsToDeepseekConfig(conf, params)

	return einoDeepseek.NewChatModel(ctx, conf)
}

func applyParamsToDeepseekConfig(conf *einoDeepseek.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		conf.Temperature = *params.Temperature
	}
	if params.MaxTokens != 0 {
		conf.MaxTokens = params.MaxTokens
	}
	if params.FrequencyPenalty != 0 {
		conf.FrequencyPenalty = params.FrequencyPenalty
	}
	if params.PresencePenalty != 0 {
		conf.PresencePenalty = params.PresencePenalty
	}

	if params.ResponseFormat == entity.ModelResponseFormatJSON {
		conf.ResponseFormatType = einoDeepseek.ResponseFormatTypeJSONObject
	} else {
		conf.ResponseFormatType = einoDeepseek.ResponseFormatTypeText
	}
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://api.deepseek.com/v1",
		APIKey:  "${DEEPSEEK_API_KEY}",
		API:     "openai-completions",
		Models: []options.ModelDefinition{
			{ID: "deepseek-chat", Name: "Deepseek V3", Reasoning: false, Input: []string{"text"}, ContextWindow: 131072, MaxTokens: 8192, Cost: options.ModelCost{Input: 0.27, Output: 1.1, CacheRead: 0.07}},
			{ID: "deepseek-reasoner", Name: "Deepseek R1", Reasoning: true, Input: []string{"text"}, ContextWindow: 131072, MaxTokens: 8192, Cost: options.ModelCost{Input: 0.55, Output: 2.19, CacheRead: 0.14}},
		},
	}
}
