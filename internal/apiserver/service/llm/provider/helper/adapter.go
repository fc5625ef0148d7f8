package helper

import (
	"context"

	"github.com/bytedance/gg/gptr"
	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/mentatproj/mentat/internal/apiserver/service/llm/entity"
	"github.com/mentatproj/mentat/internal/pkg/options"
)

// NewOpenAICompatibleChatModel creates an Eino chat model using the
// OpenAI-compatible API. This is the common path for providers exposing
// an OpenAI-compatible endpoint (OpenAI, DeepSeek, Qwen/DashScope,
// Ollama, etc.).
func NewOpenAICompatibleChatModel(ctx context.Context, pcfg *options.ProviderConfig, modelID string, params *entity.LLMParams) (model.ToolCallingChatModel, error) {
	cfg := &einoOpenAI.ChatModelConfig{
		Model:     modelID,
		APIKey:    ResolveEnvValue(pcfg.APIKey),
		MaxTokens: gptr.Of(MaxTokensFor(pcfg, modelID)),
		ResponseFormat: &einoOpenAI.ChatCompletionResponseFormat{
			Type: einoOpenAI.ChatCompletionResponseFormatTypeText,
		},
	}

	// Set BaseURL only for non-default OpenAI endpoints.
	if pcfg.BaseURL != "" {
		cfg.BaseURL = pcfg.BaseURL
	}

	applyParamsToOpenAIChatModelConfig(cfg, params)

	return einoOpenAI.NewChatModel(ctx, cfg)
}

func applyParamsToOpenAIChatModelConfig(cfg *einoOpenAI.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		cfg.Temperature = params.Temperature
	}
	if params.MaxTokens != 0 {
		cfg.MaxTokens = gptr.Of(params.MaxTokens)
	}
	if params.FrequencyPenalty != 0 {
		cfg.FrequencyPenalty = gptr.Of(params.FrequencyPenalty)
	}
	if params.PresencePenalty != 0 {
		cfg.PresencePenalty = gptr.Of(params.PresencePenalty)
	}

	cfg.TopP = params.TopP

	if params.ResponseFormat == entity.ModelResponseFormatJSON {
		cfg.ResponseFormat = &einoOpenAI.ChatCompletionResponseFormat{
			Type: einoOpenAI.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
}
