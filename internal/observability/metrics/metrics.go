package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	caseRetrievals metric.Int64Counter
	casesReturned  metric.Int64Histogram
	formatErrors   metric.Int64Counter
}

// Case retrieval outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "chargedesk"
	}
	meter := provider.Meter(name)

	caseRetrievals, err := meter.Int64Counter("chargedesk_case_retrievals_total",
		metric.WithDescription("Case list retrievals by outcome."))
	if err != nil {
		return nil, err
	}
	casesReturned, err := meter.Int64Histogram("chargedesk_cases_returned",
		metric.WithDescription("Cases returned per successful retrieval."))
	if err != nil {
		return nil, err
	}
	formatErrors, err := meter.Int64Counter("chargedesk_format_errors_total",
		metric.WithDescription("Case fields rendered as placeholder after a format failure."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		caseRetrievals: caseRetrievals,
		casesReturned:  casesReturned,
		formatErrors:   formatErrors,
	}, nil
}

// RecordCaseRetrieval counts one case list retrieval. count is ignored on failure.
func (m *Metrics) RecordCaseRetrieval(ctx context.Context, outcome string, count int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.caseRetrievals.Add(ctx, 1, metric.WithAttributes(attrs...))
	if outcome == OutcomeSuccess {
		m.casesReturned.Record(ctx, int64(count))
	}
}

// RecordFormatError counts a field that fell back to the placeholder.
func (m *Metrics) RecordFormatError(ctx context.Context, field string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("field", strings.TrimSpace(field)))
	m.formatErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome":     {},
	"field":       {},
	"reason":      {},
	"operation":   {},
	"method":      {},
	"route":       {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
