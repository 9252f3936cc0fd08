package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/chargedesk/internal/config"
)

// envPrefix is shared with the display config.
const envPrefix = "CHARGEDESK_"

const (
	defaultServiceName   = "chargedesk"
	defaultOTLPProtocol  = "grpc"
	defaultSamplingRatio = 0.1
)

// Config holds the logging and tracing settings for the chargeback service.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig starts from the application config and applies environment
// overrides. CHARGEDESK_LOG_LEVEL wins over LOG_LEVEL, and so on for every key.
func LoadConfig(cfg config.Config) Config {
	production := cfg.IsProduction()

	out := Config{
		ServiceName:          strings.TrimSpace(cfg.AppName),
		Environment:          envString("DEPLOYMENT_ENV", cfg.Environment),
		Version:              envString("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:             strings.ToLower(envString("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(envString("LOG_FORMAT", "")),
		OtelEnabled:          envBool("OTEL_ENABLED", production),
		OtelExporterEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(envString("OTEL_EXPORTER_OTLP_PROTOCOL", defaultOTLPProtocol)),
		OtelSamplingRatio:    envFloat("OTEL_SAMPLING_RATIO", defaultSamplingRatio),
	}
	if out.ServiceName == "" {
		out.ServiceName = defaultServiceName
	}
	if out.LogFormat == "" {
		out.LogFormat = "console"
		if production {
			out.LogFormat = "json"
		}
	}
	if protocol := envString("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", ""); protocol != "" {
		out.OtelExporterProtocol = strings.ToLower(protocol)
	}
	if out.OtelSamplingRatio < 0 || out.OtelSamplingRatio > 1 {
		out.OtelSamplingRatio = defaultSamplingRatio
	}
	return out
}

// Debug reports whether handlers should log at debug level.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func lookupEnv(key string) string {
	if value := strings.TrimSpace(os.Getenv(envPrefix + key)); value != "" {
		return value
	}
	return strings.TrimSpace(os.Getenv(key))
}

func envString(key, def string) string {
	if value := lookupEnv(key); value != "" {
		return value
	}
	return strings.TrimSpace(def)
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(lookupEnv(key)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envFloat(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(lookupEnv(key), 64)
	if err != nil {
		return def
	}
	return parsed
}
