package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/generation"
	"github.com/nguyentranbao-ct/swipe-preview/internal/kafka"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/nguyentranbao-ct/swipe-preview/internal/repo/catalog"
	"github.com/nguyentranbao-ct/swipe-preview/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestInvokeBuildsGraph(t *testing.T) {
	t.Setenv("GENERATION_STRATEGY", "simulated")
	t.Setenv("FAL_KEY", "")

	var (
		e        *echo.Echo
		consumer kafka.Consumer
		uc       usecase.DeckUsecase
	)
	app := Invoke(func(ee *echo.Echo, c kafka.Consumer, u usecase.DeckUsecase) {
		e, consumer, uc = ee, c, u
	})
	require.NoError(t, app.Err())
	assert.NotNil(t, e)
	assert.NotNil(t, consumer)
	assert.NotNil(t, uc)
	assert.Equal(t, models.FeedPopular, uc.Feed())
}

func TestNewPromptGenerator(t *testing.T) {
	cfg := &config.Config{Generation: config.GenerationConfig{Strategy: config.StrategyOneStage}}
	g, err := newPromptGenerator(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, g)

	cfg.Generation.Strategy = config.StrategyTwoStage
	cfg.Generation.PromptProvider = config.PromptProviderFal
	g, err = newPromptGenerator(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, g)

	cfg.Generation.PromptProvider = "gpt"
	_, err = newPromptGenerator(cfg, nil)
	assert.Error(t, err)
}

func TestPreload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/saved", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":"A","title":"Lamp"},{"id":"B","title":"Chair"}]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		Catalog:    config.CatalogConfig{BaseURL: srv.URL, Timeout: time.Second},
		Generation: config.GenerationConfig{Workers: 1, PreloadLimit: 2},
	}
	synth, err := generation.NewSimulated(0, "https://v.test/{{.ID}}.mp4")
	require.NoError(t, err)
	ctrl, err := generation.NewController(cfg, synth)
	require.NoError(t, err)
	defer ctrl.Close()

	report, err := preload(context.Background(), models.FeedSaved, catalog.NewClient(cfg), ctrl)
	require.NoError(t, err)
	assert.True(t, report.Ready)
	assert.Equal(t, "https://v.test/A.mp4", report.States["A"].VideoURL)
	assert.Equal(t, "https://v.test/B.mp4", report.States["B"].VideoURL)
	assert.False(t, ctrl.Modal().Open)
}

func TestPreloadLifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":"A","title":"Lamp"}]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		Catalog:    config.CatalogConfig{BaseURL: srv.URL, Timeout: time.Second},
		Generation: config.GenerationConfig{Workers: 1, PreloadLimit: 1},
	}
	synth, err := generation.NewSimulated(0, "https://v.test/{{.ID}}.mp4")
	require.NoError(t, err)

	var out bytes.Buffer
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(
			catalog.NewClient,
			func() generation.Synthesizer { return synth },
			newController,
		),
		fx.Invoke(Preload(models.FeedPopular, &out)),
	)
	require.NoError(t, app.Err())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx))
	sig := <-app.Wait()
	require.NoError(t, app.Stop(ctx))

	assert.Equal(t, 0, sig.ExitCode)
	var report PreloadReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.Ready)
	assert.Equal(t, models.PhaseSuccess, report.States["A"].Phase)
}

func TestGenerateOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":"A","title":"Lamp"},{"id":"B","title":"Chair"}]}`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		Catalog:    config.CatalogConfig{BaseURL: srv.URL, Timeout: time.Second},
		Generation: config.GenerationConfig{Workers: 1, PreloadLimit: 1},
	}
	synth, err := generation.NewSimulated(0, "https://v.test/{{.ID}}.mp4")
	require.NoError(t, err)
	ctrl, err := generation.NewController(cfg, synth)
	require.NoError(t, err)
	defer ctrl.Close()
	source := catalog.NewClient(cfg)

	report, err := generateOne(context.Background(), models.FeedPopular, "B", source, ctrl)
	require.NoError(t, err)
	assert.True(t, report.Outcome.OK())
	assert.Equal(t, "https://v.test/B.mp4", report.Outcome.VideoURL)
	assert.Equal(t, models.PhaseSuccess, ctrl.State("B").Phase)
	assert.Equal(t, models.PhaseIdle, ctrl.State("A").Phase)

	_, err = generateOne(context.Background(), models.FeedPopular, "Z", source, ctrl)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
