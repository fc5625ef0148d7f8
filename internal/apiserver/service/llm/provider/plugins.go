package provider

import (
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/anthropic"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/deepseek"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/gemini"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/ollama"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/openai"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/qwen"
	"github.com/mentatproj/mentat/internal/apiserver/service/llm/provider/spi"
)

// NewInTreeRegistry returns the registry of built-in provider plugins.
func NewInTreeRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(anthropic.Name, func() spi.ChatModelPlugin { return anthropic.New() })
	r.MustRegister(openai.Name, func() spi.ChatModelPlugin { return openai.New() })
	r.MustRegister(gemini.Name, func() spi.ChatModelPlugin { return gemini.New() })
	r.MustRegister(deepseek.Name, func() spi.ChatModelPlugin { return deepseek.New() })
	r.MustRegister(qwen.Name, func() spi.ChatModelPlugin { return qwen.New() })
	r.MustRegister(ollama.Name, func() spi.ChatModelPlugin { return ollama.New() })

	return r
}
