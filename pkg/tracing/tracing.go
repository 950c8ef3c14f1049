package tracing

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"

	"trade_risk/pkg/logger"
)

type ctxKey string

const (
	TraceIDKey ctxKey = "trace_id"
	SpanIDKey  ctxKey = "span_id"
)

var (
	// Неверное не самое элегантное решение, но лучше чем выносить константу в отдельный пакет
	// лучше инициализирвоать при инстанцировании через аргументы.
	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

type Config struct {
	Host string
	Port int
}

func InitTracer(conf Config) (opentracing.Tracer, func(), error) {
	cfg := &jCfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	jMetricsFactory := metrics.NullFactory
	tracer, closer, err := cfg.NewTracer(
		jCfg.Metrics(jMetricsFactory),
	)
	if err != nil {
		return nil, nil, err
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, func() {
		if err := closer.Close(); err != nil {
			logger.Error("Error closing Jaeger tracer: %v", err)
		}
	}, nil
}

// StartSpan открывает дочерний спан от спана в ctx (или корневой)
// и кладёт trace/span id в контекст для логов.
func StartSpan(ctx context.Context, tracer opentracing.Tracer, name string) (opentracing.Span, context.Context) {
	if tracer == nil {
		tracer = opentracing.GlobalTracer()
	}
	var opts []opentracing.StartSpanOption
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := tracer.StartSpan(name, opts...)
	ctx = opentracing.ContextWithSpan(ctx, span)

	if sc, ok := span.Context().(jaeger.SpanContext); ok {
		ctx = context.WithValue(ctx, TraceIDKey, sc.TraceID().String())
		ctx = context.WithValue(ctx, SpanIDKey, sc.SpanID().String())
	}
	return span, ctx
}

// TraceID returns the jaeger trace id stored by StartSpan, "" if none.
func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(TraceIDKey).(string)
	return v
}
