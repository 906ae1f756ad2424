package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/cobrato/cobrato/internal/config"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(StartScheduler),
)

// ProvideConfig maps application configuration onto the scheduler's knobs.
func ProvideConfig(cfg config.Config) Config {
	return Config{
		DispatchCron:             cfg.DispatchCron,
		TrashRetention:           time.Duration(cfg.TrashRetentionDays) * 24 * time.Hour,
		SubscriptionReminderDays: cfg.SubscriptionReminderDays,
	}.withDefaults()
}

func StartScheduler(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runCtx, cancel := context.WithCancel(context.Background())

			go func() { _ = sched.RunForever(runCtx) }()

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
