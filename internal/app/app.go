package app

import (
	"context"
	"fmt"

	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/deck"
	"github.com/nguyentranbao-ct/swipe-preview/internal/generation"
	"github.com/nguyentranbao-ct/swipe-preview/internal/kafka"
	"github.com/nguyentranbao-ct/swipe-preview/internal/proxy"
	"github.com/nguyentranbao-ct/swipe-preview/internal/repo/catalog"
	"github.com/nguyentranbao-ct/swipe-preview/internal/repo/fal"
	"github.com/nguyentranbao-ct/swipe-preview/internal/repo/llm"
	"github.com/nguyentranbao-ct/swipe-preview/internal/server"
	"github.com/nguyentranbao-ct/swipe-preview/internal/usecase"
	"github.com/nguyentranbao-ct/swipe-preview/pkg/logger"
	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

func Invoke(funcs ...any) *fx.App {
	conf := config.MustLoad()
	if err := logger.Configure(conf.Log.Level, conf.Log.Format); err != nil {
		panic(fmt.Errorf("configure logger: %w", err))
	}
	l := logger.MustNamed("app")
	l.Debugw("config loaded", l.Reflect("config", conf.Redacted()))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			fl := &fxevent.ZapLogger{
				Logger: l.Unwrap().Desugar(),
			}
			fl.UseLogLevel(zapcore.DebugLevel)
			return fl
		}),
		fx.Provide(
			deck.New,
			fal.NewClient,
			catalog.NewClient,
			newVideoSynthesizer,
			newPromptGenerator,
			generation.NewSynthesizer,
			newController,
			newDeckUsecase,

			proxy.New,
			server.NewHandler,
			server.NewEcho,

			kafka.NewSnapshotHandler,
			kafka.NewConsumer,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}

func newVideoSynthesizer(cfg *config.Config, client fal.Client) generation.VideoSynthesizer {
	return fal.NewVideoService(cfg, client)
}

// newPromptGenerator returns nil when the strategy has no prompt step, so
// Genkit and its plugin are only initialised when used.
func newPromptGenerator(cfg *config.Config, client fal.Client) (generation.PromptGenerator, error) {
	if cfg.Generation.Strategy != config.StrategyTwoStage {
		return nil, nil
	}
	switch cfg.Generation.PromptProvider {
	case config.PromptProviderGenkit:
		return llm.NewPromptService(cfg, llm.NewGenkit(cfg)), nil
	case config.PromptProviderFal:
		return fal.NewPromptService(cfg, client), nil
	default:
		return nil, fmt.Errorf("unknown prompt provider %q", cfg.Generation.PromptProvider)
	}
}

func newController(lc fx.Lifecycle, cfg *config.Config, synth generation.Synthesizer) (*generation.Controller, error) {
	ctrl, err := generation.NewController(cfg, synth)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			ctrl.Close()
			return nil
		},
	})
	return ctrl, nil
}

// newDeckUsecase loads the configured feed on start when a catalog is set.
// Without one the deck starts empty and waits for pushed snapshots.
func newDeckUsecase(
	lc fx.Lifecycle,
	cfg *config.Config,
	d *deck.Deck,
	ctrl *generation.Controller,
	source catalog.Client,
) usecase.DeckUsecase {
	uc := usecase.NewDeckUsecase(cfg, d, ctrl, source)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.Catalog.BaseURL == "" {
				log.Infow(ctx, "No catalog configured, waiting for snapshots")
				return nil
			}
			if _, err := uc.Load(ctx, ""); err != nil {
				log.Warnw(ctx, "Initial snapshot load failed", "error", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			uc.Stop()
			return nil
		},
	})
	return uc
}
