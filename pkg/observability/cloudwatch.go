package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"recipebook/application/ports"
)

// maxDatumsPerRequest is the PutMetricData limit.
const maxDatumsPerRequest = 1000

// CloudWatchAPI is the subset of the CloudWatch client used here.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics buffers data points and sends them on Flush. A nil
// client makes every method a no-op.
type CloudWatchMetrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger

	mu     sync.Mutex
	buffer []types.MetricDatum
	now    func() time.Time
}

var _ ports.Metrics = (*CloudWatchMetrics)(nil)

// NewCloudWatchMetrics creates a recorder for namespace
func NewCloudWatchMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{namespace: namespace, client: client, logger: logger, now: time.Now}
}

// Increment records one occurrence of metric for the operation label
func (m *CloudWatchMetrics) Increment(metric, label string) {
	m.record(metric, label, 1, types.StandardUnitCount)
}

// StartTimer starts timing metric for the operation label
func (m *CloudWatchMetrics) StartTimer(metric, label string) ports.Timer {
	start := m.now()
	return timerFunc(func() {
		elapsed := m.now().Sub(start)
		m.record(metric, label, float64(elapsed.Milliseconds()), types.StandardUnitMilliseconds)
	})
}

func (m *CloudWatchMetrics) record(metric, label string, value float64, unit types.StandardUnit) {
	if m.client == nil {
		return
	}
	datum := types.MetricDatum{
		MetricName: aws.String(metric),
		Dimensions: []types.Dimension{{Name: aws.String("Operation"), Value: aws.String(label)}},
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(m.now()),
	}

	m.mu.Lock()
	m.buffer = append(m.buffer, datum)
	m.mu.Unlock()
}

// Flush sends every buffered data point. Failed batches are logged and
// dropped.
func (m *CloudWatchMetrics) Flush(ctx context.Context) {
	if m.client == nil {
		return
	}

	m.mu.Lock()
	pending := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	for start := 0; start < len(pending); start += maxDatumsPerRequest {
		end := min(start+maxDatumsPerRequest, len(pending))
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: pending[start:end],
		})
		if err != nil {
			m.logger.Warn("Failed to send metrics", zap.Int("datums", end-start), zap.Error(err))
		}
	}
}

// Run flushes every interval until ctx is done, then flushes once more.
func (m *CloudWatchMetrics) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			m.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			m.Flush(ctx)
		}
	}
}

type timerFunc func()

func (f timerFunc) Stop() { f() }
