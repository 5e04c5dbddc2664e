package components

import (
	"trimline/internal/pkg/clock"
	"trimline/internal/pkg/config"
	"trimline/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		usecase.NewTokenValidator,
		usecase.NewBookingUseCase,
		usecase.NewTimelineUseCase,
		NewPushUseCase,
	),
)

func NewPushUseCase(repo usecase.PushSubscriptionRepository, cfg config.Config) usecase.PushUseCase {
	return usecase.NewPushUseCase(repo, cfg.Push.VAPIDPublicKey)
}
