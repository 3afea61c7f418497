package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"recipebook/application/ports"
)

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestCloudWatchMetrics_Flush(t *testing.T) {
	client := &fakeCloudWatch{}
	m := NewCloudWatchMetrics("RecipeBook", client, zap.NewNop())
	clock := time.Unix(100, 0)
	m.now = func() time.Time { return clock }

	m.Increment("command_count", "AddRecipeCommand")
	timer := m.StartTimer("command_duration", "AddRecipeCommand")
	clock = clock.Add(250 * time.Millisecond)
	timer.Stop()

	m.Flush(context.Background())

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "RecipeBook", aws.ToString(in.Namespace))
	require.Len(t, in.MetricData, 2)
	assert.Equal(t, "command_count", aws.ToString(in.MetricData[0].MetricName))
	assert.Equal(t, 250.0, aws.ToFloat64(in.MetricData[1].Value))
	assert.Equal(t, "AddRecipeCommand", aws.ToString(in.MetricData[1].Dimensions[0].Value))

	m.Flush(context.Background())
	assert.Len(t, client.inputs, 1, "empty buffer sends nothing")
}

func TestCloudWatchMetrics_NilClient(t *testing.T) {
	m := NewCloudWatchMetrics("RecipeBook", nil, zap.NewNop())
	assert.NotPanics(t, func() {
		m.Increment("query_count", "ListRecipesQuery")
		m.StartTimer("query_duration", "ListRecipesQuery").Stop()
		m.Flush(context.Background())
	})
}

func TestCloudWatchMetrics_FailureLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := &fakeCloudWatch{err: errors.New("throttled")}
	m := NewCloudWatchMetrics("RecipeBook", client, zap.New(core))

	m.Increment("command_errors", "ClearAllDataCommand")
	m.Flush(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("Failed to send metrics").Len())
}

func TestCollector(t *testing.T) {
	c := NewCollector("recipebook")

	c.Increment("command_count", "AddRecipeCommand")
	c.Increment("command_count", "AddRecipeCommand")
	c.StartTimer("command_duration", "AddRecipeCommand").Stop()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues("command_count", "AddRecipeCommand")))

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/api/recipes/{recipeID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", c.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/recipes/abc", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/recipes/{recipeID}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "recipebook_bus_events_total"))
}

type countingRecorder struct {
	increments int
	stops      int
}

func (r *countingRecorder) Increment(string, string) { r.increments++ }
func (r *countingRecorder) StartTimer(string, string) ports.Timer {
	return timerFunc(func() { r.stops++ })
}

func TestMultiMetrics(t *testing.T) {
	a, b := &countingRecorder{}, &countingRecorder{}
	m := MultiMetrics{a, b}

	m.Increment("query_count", "GetRecipeQuery")
	m.StartTimer("query_duration", "GetRecipeQuery").Stop()

	assert.Equal(t, 1, a.increments)
	assert.Equal(t, 1, b.increments)
	assert.Equal(t, 1, a.stops)
	assert.Equal(t, 1, b.stops)
}

func TestTracer_PassThroughWithoutSegment(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		tracer := NewTracer("recipebook", enabled)
		called := false
		err := tracer.TraceFunction(context.Background(), "command.AddRecipeCommand", func(context.Context) error {
			called = true
			return errors.New("boom")
		})
		assert.True(t, called)
		assert.EqualError(t, err, "boom")
	}
}

func TestLoggers(t *testing.T) {
	_, err := NewLogger("development", "verbose")
	assert.Error(t, err)

	logger, err := NewLogger("production", "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	core, logs := observer.New(zapcore.InfoLevel)
	bl := NewBusLogger(zap.New(core))
	bl.Info("Executing command", "type", "AddRecipeCommand")
	bl.Error("Command failed", "type", "AddRecipeCommand", "error", errors.New("x"))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "AddRecipeCommand", logs.All()[0].ContextMap()["type"])
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
}
