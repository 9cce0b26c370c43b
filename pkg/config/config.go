package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var validate = validator.New()

type Config struct {
	App     AppConfig
	Inspect InspectConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MVNO_APP_ENV" default:"dev" validate:"oneof=dev staging prod"`
	LogLevel     string `envconfig:"MVNO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MVNO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// InspectConfig tunes the offline response inspector.
type InspectConfig struct {
	MetricsFile  string `envconfig:"MVNO_INSPECT_METRICS_FILE"`
	FailFast     bool   `envconfig:"MVNO_INSPECT_FAIL_FAST" default:"false"`
	MaxBodyBytes int64  `envconfig:"MVNO_INSPECT_MAX_BODY_BYTES" default:"1048576" validate:"min=1"`
}
