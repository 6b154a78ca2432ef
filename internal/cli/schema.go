package cli

import (
	"context"
	"fmt"
	"os"

	opentracinggo "github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerzap "github.com/uber/jaeger-client-go/log/zap"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	graphql "github.com/gqlkit/graphql"
	"github.com/gqlkit/graphql/config"
	"github.com/gqlkit/graphql/example/starwars"
	"github.com/gqlkit/graphql/extensions"
	"github.com/gqlkit/graphql/log"
	"github.com/gqlkit/graphql/trace/noop"
	"github.com/gqlkit/graphql/trace/opentracing"
	gqlotel "github.com/gqlkit/graphql/trace/otel"
	"github.com/gqlkit/graphql/trace/tracer"
)

// buildSchema loads the configured schema with every configured option. The
// returned function releases the tracer.
func buildSchema(cfg *config.Config, logger *zap.Logger) (*graphql.Schema, func(), error) {
	sdl, root := starwars.Schema, interface{}(&starwars.Resolver{})
	if cfg.Schema != "" {
		b, err := os.ReadFile(cfg.Schema)
		if err != nil {
			return nil, nil, err
		}
		// fields of a loaded schema resolve to null
		sdl, root = string(b), map[string]interface{}{}
	}

	t, closeTracer, err := newTracer(cfg.Tracing, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []graphql.SchemaOpt{
		graphql.Tracer(t),
		graphql.Logger(log.NewZapLogger(logger)),
		graphql.MaxDepth(cfg.Limits.MaxDepth),
		graphql.MaxComplexity(cfg.Limits.MaxComplexity),
		graphql.MaxRecursion(cfg.Limits.MaxRecursion),
		graphql.MaxParallelism(cfg.Limits.MaxParallelism),
		graphql.DocumentCacheSize(cfg.Execution.DocumentCacheSize),
		graphql.SubscribeResolverTimeout(cfg.Execution.SubscribeResolverTimeout),
	}
	if cfg.Execution.DisableIntrospection {
		opts = append(opts, graphql.DisableIntrospection())
	}
	exts, err := newExtensions(cfg.Execution, logger)
	if err != nil {
		closeTracer()
		return nil, nil, err
	}
	opts = append(opts, graphql.Extensions(exts...))

	s, err := graphql.ParseSchema(sdl, root, opts...)
	if err != nil {
		closeTracer()
		return nil, nil, fmt.Errorf("schema: %w", err)
	}
	return s, closeTracer, nil
}

func newExtensions(cfg config.Execution, logger *zap.Logger) ([]extensions.Factory, error) {
	var exts []extensions.Factory
	if cfg.PersistedQueryCacheSize > 0 {
		pq, err := extensions.NewPersistedQueries(cfg.PersistedQueryCacheSize)
		if err != nil {
			return nil, err
		}
		exts = append(exts, pq)
	}
	for _, name := range cfg.Extensions {
		switch name {
		case "analyzer":
			exts = append(exts, extensions.Analyzer{})
		case "tracing":
			exts = append(exts, extensions.Tracing{})
		case "logger":
			exts = append(exts, extensions.Logger{Logger: logger})
		}
	}
	return exts, nil
}

func newTracer(cfg config.Tracing, logger *zap.Logger) (tracer.Tracer, func(), error) {
	switch cfg.Backend {
	case "opentracing":
		return opentracing.Tracer{}, func() {}, nil

	case "jaeger":
		jc, err := jaegercfg.FromEnv()
		if err != nil {
			return nil, nil, fmt.Errorf("jaeger: %w", err)
		}
		if jc.ServiceName == "" {
			jc.ServiceName = cfg.ServiceName
		}
		t, closer, err := jc.NewTracer(jaegercfg.Logger(jaegerzap.NewLogger(logger)))
		if err != nil {
			return nil, nil, fmt.Errorf("jaeger: %w", err)
		}
		opentracinggo.SetGlobalTracer(t)
		return opentracing.Tracer{}, func() {
			if err := closer.Close(); err != nil {
				logger.Warn("closing jaeger tracer", zap.Error(err))
			}
		}, nil

	case "otel":
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return &gqlotel.Tracer{Tracer: tp.Tracer(cfg.ServiceName)}, func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Warn("shutting down tracer provider", zap.Error(err))
			}
		}, nil
	}
	return noop.Tracer{}, func() {}, nil
}
