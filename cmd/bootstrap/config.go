package bootstrap

import (
	"trimline/internal/domain/schedule"
	"trimline/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		NewDayRules,
	),
)

func NewDayRules(cfg config.Config) (schedule.DayRules, error) {
	return cfg.Schedule.DayRules()
}
