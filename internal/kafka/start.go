package kafka

import (
	"context"

	log "github.com/nguyentranbao-ct/swipe-preview/pkg/logger/logctx"
	"go.uber.org/fx"
)

// StartConsumer runs the consumer for the lifetime of the app. A consumer
// that exits with an error shuts the app down.
func StartConsumer(lc fx.Lifecycle, sd fx.Shutdowner, consumer Consumer) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := consumer.Start(ctx); err != nil {
					log.Errorw(ctx, "Kafka consumer stopped", "error", err)
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			err := consumer.Stop(stopCtx)
			<-done
			return err
		},
	})
}
