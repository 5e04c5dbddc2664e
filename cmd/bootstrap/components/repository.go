package components

import (
	repo_impl "trimline/internal/infra/repository"
	"trimline/internal/notification"
	"trimline/internal/usecase"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewBookingRepository,
			fx.As(new(usecase.BookingRepository)),
		),
		fx.Annotate(
			repo_impl.NewPushSubscriptionRepository,
			fx.As(new(usecase.PushSubscriptionRepository)),
			fx.As(new(notification.SubscriptionSource)),
		),
	),
)
