package generation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePrompts struct {
	text   string
	err    error
	calls  atomic.Int32
	lastIn atomic.Value
}

func (f *fakePrompts) GeneratePrompt(_ context.Context, _, prompt string) (string, error) {
	f.calls.Add(1)
	f.lastIn.Store(prompt)
	return f.text, f.err
}

type fakeVideos struct {
	url     string
	err     error
	release chan struct{}
	calls   atomic.Int32
	prompt  atomic.Value
}

func (f *fakeVideos) ImageToVideo(ctx context.Context, prompt, _ string) (string, error) {
	f.calls.Add(1)
	f.prompt.Store(prompt)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.url, f.err
}

func lamp() models.Product {
	return models.Product{
		ID:    "p1",
		Title: "Brass Lamp",
		FeaturedImage: &models.FeaturedImage{
			URL:     "https://img.test/lamp.png",
			AltText: "A brass desk lamp on oak",
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Generation: config.GenerationConfig{
			Strategy:       config.StrategyTwoStage,
			Workers:        2,
			PreloadLimit:   2,
			SimulatedDelay: time.Millisecond,
			PlaceholderURL: "https://placeholder.test/{{pathEscape .ID}}.mp4",
		},
	}
}

func newController(t *testing.T, synth Synthesizer) *Controller {
	t.Helper()
	c, err := NewController(testConfig(), synth)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	return c
}
