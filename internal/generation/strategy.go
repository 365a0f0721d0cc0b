package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/nguyentranbao-ct/swipe-preview/pkg/tmplx"
)

// PromptGenerator completes a prompt with a language model.
type PromptGenerator interface {
	GeneratePrompt(ctx context.Context, system, prompt string) (string, error)
}

// VideoSynthesizer turns a prompt and a source image into a video url.
type VideoSynthesizer interface {
	ImageToVideo(ctx context.Context, prompt, imageURL string) (string, error)
}

// Synthesizer produces the preview video of one product. Failures are
// *models.GenerationError values or errors that classify as transport
// failures.
type Synthesizer interface {
	Name() config.Strategy
	SynthesizeVideo(ctx context.Context, product models.Product) (string, error)
}

type promptData struct {
	ID      string
	Title   string
	AltText string
}

func newPromptData(p models.Product) promptData {
	return promptData{ID: p.ID, Title: p.Title, AltText: p.AltText()}
}

// TwoStage first asks a language model for an optimized prompt, then
// animates the product image with it.
type TwoStage struct {
	prompts PromptGenerator
	videos  VideoSynthesizer
	tmpl    *Prompts
}

func NewTwoStage(prompts PromptGenerator, videos VideoSynthesizer) *TwoStage {
	return &TwoStage{prompts: prompts, videos: videos, tmpl: defaultPrompts}
}

// WithPrompts replaces the built-in prompt templates.
func (s *TwoStage) WithPrompts(p *Prompts) *TwoStage {
	s.tmpl = p
	return s
}

func (s *TwoStage) Name() config.Strategy { return config.StrategyTwoStage }

func (s *TwoStage) SynthesizeVideo(ctx context.Context, product models.Product) (string, error) {
	imageURL := product.ImageURL()
	if imageURL == "" {
		return "", models.NewGenerationError(models.KindMissingImage, "product has no image")
	}

	input, err := s.tmpl.Optimize.RenderString(newPromptData(product))
	if err != nil {
		return "", fmt.Errorf("render prompt input: %w", err)
	}
	prompt, err := s.prompts.GeneratePrompt(ctx, s.tmpl.System, input)
	if err != nil {
		return "", err
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", models.NewGenerationError(models.KindEmptyResult, "prompt generation returned no text")
	}
	return s.videos.ImageToVideo(ctx, prompt, imageURL)
}

// OneStage animates the product image with a templated prompt.
type OneStage struct {
	videos VideoSynthesizer
	tmpl   *Prompts
}

func NewOneStage(videos VideoSynthesizer) *OneStage {
	return &OneStage{videos: videos, tmpl: defaultPrompts}
}

func (s *OneStage) WithPrompts(p *Prompts) *OneStage {
	s.tmpl = p
	return s
}

func (s *OneStage) Name() config.Strategy { return config.StrategyOneStage }

func (s *OneStage) SynthesizeVideo(ctx context.Context, product models.Product) (string, error) {
	imageURL := product.ImageURL()
	if imageURL == "" {
		return "", models.NewGenerationError(models.KindMissingImage, "product has no image")
	}
	prompt, err := s.tmpl.Direct.RenderString(newPromptData(product))
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return s.videos.ImageToVideo(ctx, prompt, imageURL)
}

// Simulated skips the inference API and returns a deterministic placeholder
// url after a fixed delay.
type Simulated struct {
	delay time.Duration
	url   *tmplx.Template
	after func(time.Duration) <-chan time.Time
}

func NewSimulated(delay time.Duration, urlTemplate string) (*Simulated, error) {
	tmpl, err := tmplx.Parse("placeholder", urlTemplate,
		tmplx.WithValidate(promptData{ID: "probe"}, tmplx.NotBlank))
	if err != nil {
		return nil, fmt.Errorf("parse placeholder url: %w", err)
	}
	return &Simulated{delay: delay, url: tmpl, after: time.After}, nil
}

func (s *Simulated) Name() config.Strategy { return config.StrategySimulated }

func (s *Simulated) SynthesizeVideo(ctx context.Context, product models.Product) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.after(s.delay):
	}
	return s.url.RenderString(newPromptData(product))
}

// NewSynthesizer picks the strategy named in the configuration.
func NewSynthesizer(cfg *config.Config, prompts PromptGenerator, videos VideoSynthesizer) (Synthesizer, error) {
	switch cfg.Generation.Strategy {
	case config.StrategyTwoStage:
		tmpl, err := LoadPrompts(cfg.Generation.PromptsFile)
		if err != nil {
			return nil, err
		}
		return NewTwoStage(prompts, videos).WithPrompts(tmpl), nil
	case config.StrategyOneStage:
		tmpl, err := LoadPrompts(cfg.Generation.PromptsFile)
		if err != nil {
			return nil, err
		}
		return NewOneStage(videos).WithPrompts(tmpl), nil
	case config.StrategySimulated:
		return NewSimulated(cfg.Generation.SimulatedDelay, cfg.Generation.PlaceholderURL)
	default:
		return nil, fmt.Errorf("unknown generation strategy %q", cfg.Generation.Strategy)
	}
}
