package components

import (
	"trimline/internal/handler"
	"trimline/internal/handler/api"
	"trimline/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewTimelineHandler,
		api.NewPushHandler,
		api.NewWSHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
