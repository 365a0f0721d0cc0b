package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
)

// PromptService generates video prompts with a Genkit model.
type PromptService struct {
	genkit *genkit.Genkit
	model  string
}

func NewGenkit(cfg *config.Config) *genkit.Genkit {
	ctx := context.Background()
	googleAI := &googlegenai.GoogleAI{
		APIKey: cfg.LLM.GoogleAIAPIKey,
	}
	return genkit.Init(ctx, genkit.WithPlugins(googleAI))
}

func NewPromptService(cfg *config.Config, g *genkit.Genkit) *PromptService {
	return &PromptService{
		genkit: g,
		model:  cfg.LLM.Model,
	}
}

func (s *PromptService) GeneratePrompt(ctx context.Context, system, prompt string) (string, error) {
	text, err := genkit.GenerateText(ctx, s.genkit,
		ai.WithModelName(s.model),
		ai.WithSystem("%s", system),
		ai.WithPrompt("%s", prompt),
	)
	if err != nil {
		return "", models.TransportError(fmt.Errorf("generate prompt: %w", err))
	}
	return strings.TrimSpace(text), nil
}
