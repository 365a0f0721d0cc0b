package app

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/swipe-preview/internal/generation"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/nguyentranbao-ct/swipe-preview/internal/repo/catalog"
	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
	"go.uber.org/fx"
)

// PreloadReport is printed by the preload command.
type PreloadReport struct {
	Feed   models.Feed                       `json:"feed"`
	Ready  bool                              `json:"ready"`
	States map[string]models.GenerationState `json:"states"`
}

// GenerateReport is printed by the generate command.
type GenerateReport struct {
	Feed    models.Feed    `json:"feed"`
	Outcome models.Outcome `json:"outcome"`
}

// Preload resolves the video of every product in feed once, writes a report
// to out and shuts the app down. The exit code is 1 unless every product
// has a video.
func Preload(feed models.Feed, out io.Writer) any {
	return func(lc fx.Lifecycle, sd fx.Shutdowner, source catalog.Client, ctrl *generation.Controller) {
		runOnce(lc, sd, out, func(ctx context.Context) (any, bool, error) {
			report, err := preload(ctx, feed, source, ctrl)
			if err != nil {
				return nil, false, err
			}
			return report, report.Ready, nil
		})
	}
}

// Generate runs the generation chain for one product of feed and waits for
// it to settle. The exit code is 1 unless a video was produced.
func Generate(feed models.Feed, productID string, out io.Writer) any {
	return func(lc fx.Lifecycle, sd fx.Shutdowner, source catalog.Client, ctrl *generation.Controller) {
		runOnce(lc, sd, out, func(ctx context.Context) (any, bool, error) {
			report, err := generateOne(ctx, feed, productID, source, ctrl)
			if err != nil {
				return nil, false, err
			}
			return report, report.Outcome.OK(), nil
		})
	}
}

// runOnce runs job after start, prints its report and shuts the app down
// with exit code 0 only when job reports ok.
func runOnce(lc fx.Lifecycle, sd fx.Shutdowner, out io.Writer, job func(ctx context.Context) (any, bool, error)) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				report, ok, err := job(ctx)
				code := 0
				if err != nil {
					log.Errorw(ctx, "Command failed", "error", err)
					code = 1
				} else {
					if !ok {
						code = 1
					}
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					if err := enc.Encode(report); err != nil {
						log.Errorw(ctx, "Write report", "error", err)
					}
				}
				_ = sd.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}

func preload(ctx context.Context, feed models.Feed, source catalog.Client, ctrl *generation.Controller) (*PreloadReport, error) {
	products, err := source.ListProducts(ctx, feed)
	if err != nil {
		return nil, err
	}
	ctx = log.With(ctx, "feed", feed)
	log.Infow(ctx, "Preloading product videos", "count", len(products))
	if err := ctrl.Preload(ctx, products); err != nil {
		return nil, err
	}

	ids := models.ProductIDs(products)
	states := make(map[string]models.GenerationState, len(ids))
	for _, id := range ids {
		states[id] = ctrl.State(id)
	}
	return &PreloadReport{
		Feed:   feed,
		Ready:  len(ids) > 0 && ctrl.Ready(ids),
		States: states,
	}, nil
}

func generateOne(ctx context.Context, feed models.Feed, productID string, source catalog.Client, ctrl *generation.Controller) (*GenerateReport, error) {
	products, err := source.ListProducts(ctx, feed)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID != productID {
			continue
		}
		ctx = log.With(ctx, "feed", feed, "product_id", productID)
		log.Infow(ctx, "Generating product video")
		outcome, err := ctrl.Generate(ctx, p)
		if err != nil {
			return nil, err
		}
		return &GenerateReport{Feed: feed, Outcome: outcome}, nil
	}
	return nil, fmt.Errorf("product %q in %s feed: %w", productID, feed, models.ErrNotFound)
}
