// Package spi defines the provider plugin contract.
package spi

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/mentatproj/mentat/internal/apiserver/service/llm/entity"
	"github.com/mentatproj/mentat/internal/pkg/options"
)

// ChatModelPlugin builds tool-calling chat models for one provider.
type ChatModelPlugin interface {
	// Name returns the provider id.
	Name() string

	// DefaultConfig returns the built-in configuration the user config
	// is merged over.
	DefaultConfig() *options.ProviderConfig

	// BuildChatModel constructs an Eino chat model for the given model id.
	// params may be nil, in which case provider defaults are used. The
	// returned model supports Generate and WithTools.
	BuildChatModel(ctx context.Context, cfg *options.ProviderConfig, modelID string, params *entity.LLMParams) (model.ToolCallingChatModel, error)
}

// PluginFactory creates a ChatModelPlugin instance.
type PluginFactory func() ChatModelPlugin
