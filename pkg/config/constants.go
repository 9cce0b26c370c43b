package config

// EnvPrefix namespaces every environment variable the client reads.
const EnvPrefix = "mvno"

const (
	EnvAppEnv       = "MVNO_APP_ENV"
	EnvLogLevel     = "MVNO_LOG_LEVEL"
	EnvLogWarnStack = "MVNO_LOG_WARN_STACK"
	EnvEnvFile      = "MVNO_ENV_FILE"

	EnvInspectMetricsFile  = "MVNO_INSPECT_METRICS_FILE"
	EnvInspectFailFast     = "MVNO_INSPECT_FAIL_FAST"
	EnvInspectMaxBodyBytes = "MVNO_INSPECT_MAX_BODY_BYTES"
)

const (
	AppEnvDev     = "dev"
	AppEnvStaging = "staging"
	AppEnvProd    = "prod"
)
