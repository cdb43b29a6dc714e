package overdue

import (
	"context"

	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("overdue.worker",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			BatchSize:    cfg.Overdue.BatchSize,
			PollInterval: cfg.Overdue.PollInterval,
		}
	}),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
