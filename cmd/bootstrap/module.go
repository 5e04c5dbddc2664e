package bootstrap

import (
	"trimline/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	components.RepositoryModule,
	components.DispatchModule,
	components.UseCaseModule,
	components.HandlerModule,
)
