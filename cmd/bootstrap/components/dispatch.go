package components

import (
	"context"
	"log/slog"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/fx"

	"trimline/internal/dispatch"
	"trimline/internal/notification"
	"trimline/internal/pkg/config"
	"trimline/internal/usecase"
)

var DispatchModule = fx.Module("dispatch",
	fx.Provide(
		dispatch.NewHub,
		usecase.NewTimelineRebuild,
		NewDispatcher,
		NewNotifier,
		fx.Annotate(
			func(d *dispatch.Dispatcher) *dispatch.Dispatcher { return d },
			fx.As(new(usecase.RecomputePublisher)),
		),
		fx.Annotate(
			func(n *notification.Notifier) *notification.Notifier { return n },
			fx.As(new(usecase.Notifier)),
		),
	),
)

func NewDispatcher(
	lc fx.Lifecycle,
	hub *dispatch.Hub,
	rebuild dispatch.RebuildFunc,
	logger *slog.Logger,
) *dispatch.Dispatcher {
	d := dispatch.NewDispatcher(hub, rebuild, logger)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			d.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			d.Stop()
			return nil
		},
	})
	return d
}

func NewNotifier(
	lc fx.Lifecycle,
	source notification.SubscriptionSource,
	cfg config.Config,
	logger *slog.Logger,
) *notification.Notifier {
	options := &webpush.Options{
		Subscriber:      cfg.Push.Subscriber,
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		TTL:             60,
	}
	n := notification.NewNotifier(source, options, cfg.Push.Workers, logger)

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			n.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
	return n
}
