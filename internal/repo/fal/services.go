package fal

import (
	"context"
	"strings"

	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/tidwall/gjson"
)

// VideoService turns a prompt and a source image into a video url using an
// image-to-video model.
type VideoService struct {
	client   Client
	model    string
	useQueue bool
}

func NewVideoService(cfg *config.Config, client Client) *VideoService {
	return &VideoService{
		client:   client,
		model:    cfg.Fal.VideoModel,
		useQueue: cfg.Fal.UseQueue,
	}
}

type imageToVideoInput struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url"`
}

func (s *VideoService) ImageToVideo(ctx context.Context, prompt, imageURL string) (string, error) {
	res, err := call(ctx, s.client, s.useQueue, s.model, imageToVideoInput{
		Prompt:   prompt,
		ImageURL: imageURL,
	})
	if err != nil {
		return "", models.TransportError(err)
	}
	url := strings.TrimSpace(res.Get("video.url").String())
	if url == "" {
		return "", models.NewGenerationError(models.KindNoMediaProduced, "video generation returned no media")
	}
	return url, nil
}

// PromptService asks a hosted language model for an optimized video prompt.
type PromptService struct {
	client   Client
	model    string
	llmModel string
}

func NewPromptService(cfg *config.Config, client Client) *PromptService {
	return &PromptService{
		client:   client,
		model:    cfg.Fal.PromptModel,
		llmModel: cfg.Fal.LLMModel,
	}
}

type completionInput struct {
	Model        string `json:"model"`
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

func (s *PromptService) GeneratePrompt(ctx context.Context, system, prompt string) (string, error) {
	res, err := s.client.Run(ctx, s.model, completionInput{
		Model:        s.llmModel,
		Prompt:       prompt,
		SystemPrompt: system,
	})
	if err != nil {
		return "", models.TransportError(err)
	}
	return strings.TrimSpace(res.Get("output").String()), nil
}

func call(ctx context.Context, client Client, useQueue bool, model string, input any) (gjson.Result, error) {
	if useQueue {
		return client.Subscribe(ctx, model, input)
	}
	return client.Run(ctx, model, input)
}
