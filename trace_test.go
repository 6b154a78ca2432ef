package graphql_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerzap "github.com/uber/jaeger-client-go/log/zap"
	"go.uber.org/zap/zaptest"

	graphql "github.com/gqlkit/graphql"
	gqlopentracing "github.com/gqlkit/graphql/trace/opentracing"
)

// TestJaegerTracing needs a running jaeger agent and its query API, e.g.
// JAEGER_QUERY_ENDPOINT=http://localhost:16686/api/traces.
func TestJaegerTracing(t *testing.T) {
	queryAPI := os.Getenv("JAEGER_QUERY_ENDPOINT")
	if queryAPI == "" {
		t.Skip("skipping test; JAEGER_QUERY_ENDPOINT env not defined.")
	}
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		t.Skipf("skipping test; could not initialize jaeger: %s", err)
	}

	svcName := t.Name() + "-" + ksuid.New().String()
	queryURL := fmt.Sprintf("%s?lookback=1h&limit=1&service=%s", queryAPI, svcName)

	cfg.ServiceName = svcName
	cfg.Sampler.Type = jaeger.SamplerTypeConst
	cfg.Sampler.Param = 1
	cfg.Reporter.LogSpans = true

	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaegerzap.NewLogger(zaptest.NewLogger(t))))
	if err != nil {
		t.Skipf("skipping test; could not initialize jaeger: %s", err)
	}
	opentracing.SetGlobalTracer(tracer)

	s, err := graphql.ParseSchema(`
		type Query {
			hello: String
		}`,
		map[string]interface{}{"hello": "World"},
		graphql.Tracer(gqlopentracing.Tracer{}),
	)
	require.NoError(t, err)

	// No traces should be in the system yet..
	assertTraceCount(t, queryURL, 0)

	resp := s.Exec(context.Background(), `{ hello }`, "", nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"hello":"World"}`, string(resp.Data))
	require.NoError(t, closer.Close())

	time.Sleep(1 * time.Second)
	assertTraceCount(t, queryURL, 1)
}

func assertTraceCount(t *testing.T, queryURL string, count int) {
	t.Helper()
	var data struct {
		Data []json.RawMessage `json:"data"`
	}
	httpGetJSON(t, queryURL, &data)
	assert.Len(t, data.Data, count)
}

func httpGetJSON(t *testing.T, url string, target interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, target))
}
