package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"trimline/internal/domain/schedule"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (business hours, timeouts, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Schedule ScheduleConfig
	Push     PushConfig
	Rate     RateConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

// ScheduleConfig carries the per-resource calendar rules. A single shop runs
// every chair on the same hours, so one set of rules covers all resources.
type ScheduleConfig struct {
	Opening            string `envconfig:"SCHEDULE_OPENING" default:"08:00"`
	Closing            string `envconfig:"SCHEDULE_CLOSING" default:"17:00"`
	BlockedStart       string `envconfig:"SCHEDULE_BLOCKED_START" default:"12:00"`
	BlockedEnd         string `envconfig:"SCHEDULE_BLOCKED_END" default:"13:00"`
	BufferMinutes      int    `envconfig:"SCHEDULE_BUFFER_MINUTES" default:"0"`
	QueueCapacity      int    `envconfig:"SCHEDULE_QUEUE_CAPACITY" default:"20"`
	DefaultDurationMin int    `envconfig:"SCHEDULE_DEFAULT_DURATION_MIN" default:"30"`
	ScheduledFirst     bool   `envconfig:"SCHEDULE_SCHEDULED_FIRST" default:"false"`
}

type PushConfig struct {
	VAPIDPublicKey  string `envconfig:"PUSH_VAPID_PUBLIC_KEY" default:""`
	VAPIDPrivateKey string `envconfig:"PUSH_VAPID_PRIVATE_KEY" default:""`
	Subscriber      string `envconfig:"PUSH_SUBSCRIBER" default:"mailto:ops@trimline.local"`
	Workers         int    `envconfig:"PUSH_WORKERS" default:"4"`
}

type RateConfig struct {
	RequestsPerSecond float64 `envconfig:"RATE_REQUESTS_PER_SECOND" default:"20"`
	Burst             int     `envconfig:"RATE_BURST" default:"40"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// DayRules converts the env-level schedule section into the engine's rules
// value. Malformed clock strings are a startup error, not a runtime one.
func (c *ScheduleConfig) DayRules() (schedule.DayRules, error) {
	opening, err := schedule.ParseMinute(c.Opening)
	if err != nil {
		return schedule.DayRules{}, fmt.Errorf("invalid SCHEDULE_OPENING: %w", err)
	}
	closing, err := schedule.ParseMinute(c.Closing)
	if err != nil {
		return schedule.DayRules{}, fmt.Errorf("invalid SCHEDULE_CLOSING: %w", err)
	}
	blockedStart, err := schedule.ParseMinute(c.BlockedStart)
	if err != nil {
		return schedule.DayRules{}, fmt.Errorf("invalid SCHEDULE_BLOCKED_START: %w", err)
	}
	blockedEnd, err := schedule.ParseMinute(c.BlockedEnd)
	if err != nil {
		return schedule.DayRules{}, fmt.Errorf("invalid SCHEDULE_BLOCKED_END: %w", err)
	}

	policy := schedule.PackQueueFirst
	if c.ScheduledFirst {
		policy = schedule.PackScheduledFirst
	}

	rules := schedule.DayRules{
		Opening:         opening,
		Closing:         closing,
		Blocked:         schedule.Interval{Start: blockedStart, End: blockedEnd},
		BufferMinutes:   c.BufferMinutes,
		QueueCapacity:   c.QueueCapacity,
		DefaultDuration: c.DefaultDurationMin,
		Policy:          policy,
	}
	if err := rules.Validate(); err != nil {
		return schedule.DayRules{}, err
	}
	return rules, nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
			TimeZone:   "UTC",
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Schedule: ScheduleConfig{
			Opening:            "08:00",
			Closing:            "17:00",
			BlockedStart:       "12:00",
			BlockedEnd:         "13:00",
			BufferMinutes:      0,
			QueueCapacity:      20,
			DefaultDurationMin: 30,
		},
		Rate: RateConfig{
			RequestsPerSecond: 100,
			Burst:             200,
		},
	}
}
