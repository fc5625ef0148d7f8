package anthropic

import (
	"context"

	einoClaude "github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"github.com/mentatproj/mentat/internal/apiserver/service/llm/entity"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/helper"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/spi"
	"github.com/mentatproj/mentat/internal/pkg/options"
)

const Name = "anthropic"

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
	cfg := &einoClaude.Config{
		APIKey:    helper.ResolveEnvValue(pcfg.APIKey),
		Model:     modelID,
		MaxTokens: helper.MaxTokensFor(pcfg, modelID),
	}

	if pcfg.BaseURL != "" {
		cfg.BaseURL = &pcfg.BaseURL
	}

	applyParamsToClaudeConfig(cfg, params)

	return einoClaude.NewChatModel(ctx, cfg)
}

func applyParamsToClaudeConfig(conf *einoClaude.Config, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		conf.Temperature = params.Temperature
	}
	if params.MaxTokens != 0 {
		conf.MaxTokens = params.MaxTokens
	}
	if params.TopP != nil {
		conf.TopP = params.TopP
	}
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://api.anthropic.com/v1",
		APIKey:  "${ANTHROPIC_API_KEY}",
		API:     "anthropic-messages",
		Models: []options.ModelDefinition{
			{
				ID:            "claude-sonnet-4-5",
				Name:          "Claude Sonnet 4.5",
				Reasoning:     true,
				Input:         []string{"text"},
				ContextWindow: 200000,
				MaxTokens:     64000,
				Cost: options.ModelCost{
					Input:  0.003,
					Output: 0.015,
				},
			},
			{
				ID:            "claude-haiku-4-5",
				Name:          "Claude Haiku 4.5",
				Reasoning:     false,
				Input:         []string{"text"},
				ContextWindow: 200000,
				MaxTokens:     64000,
				Cost: options.ModelCost{
					Input:  0.001,
					Output: 0.005,
				},
			},
		},
	}
}
