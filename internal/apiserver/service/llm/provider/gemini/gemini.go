package gemini

import (
	"context"
	"fmt"

	einoGemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/mentatproj/mentat/internal/apiserver/service/llm/entity"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/helper"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/spi"
	"github.com/mentatproj/mentat/internal/pkg/options"
)

const Name = "gemini"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{PluginName: Name},
	}
}

// BuildChatModel goes through Google's generative AI API rather than the
// OpenAI-compatible path.
func (p *Plugin) BuildChatModel(ctx context.Context, pcfg *options.ProviderConfig, modelID string, params *entity.LLMParams) (model.ToolCallingChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  helper.ResolveEnvValue(pcfg.APIKey),
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: "https://generativelanguage.googleapis.com/",
		},
	}

	if pcfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = pcfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client for %s/%s: %w", Name, modelID, err)
	}

	cfg := &einoGemini.Config{
		Client: client,
		Model:  modelID,
	}

	if helper.IsReasoningModel(pcfg, modelID) {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
		}
	}

	applyParamsToGeminiConfig(cfg, params)

	return einoGemini.NewChatModel(ctx, cfg)
}

func applyParamsToGeminiConfig(conf *einoGemini.Config, params *entity.LLMParams) {
	if params == nil {
		return
	}

	conf.TopK = params.TopK
	conf.TopP = params.TopP

	if params.Temperature != nil {
		t := *params.Temperature
		conf.Temperature = &t
	}

	if params.MaxTokens != 0 {
		mt := params.MaxTokens
		conf.MaxTokens = &mt
	}

	if params.EnableThinking != nil {
		conf.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: *params.EnableThinking,
		}
	}
}

func (p *Plugin) DefaultConfig() *options.ProviderConfig {
	return &options.ProviderConfig{
		BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		APIKey:  "${GOOGLE_API_KEY}",
		API:     "google-generative-ai",
		Models: []options.ModelDefinition{
			{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Reasoning: true, Input: []string{"text", "image"}, ContextWindow: 1048576, MaxTokens: 65536, Cost: options.ModelCost{Input: 1.25, Output: 10, CacheRead: 0.31}},
			{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Reasoning: true, Input: []string{"text", "image"}, ContextWindow: 1048576, MaxTokens: 65536, Cost: options.ModelCost{Input: 0.15, Output: 0.6, CacheRead: 0.0375}},
		},
	}
}
