package xexport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	"google.golang.org/protobuf/proto"

	"github.com/omeyang/mcpkit/pkg/observability/xmetrics"
)

// findMetric 按名字在导出请求中查找指标
func findMetric(req *colmetricspb.ExportMetricsServiceRequest, name string) *metricspb.Metric {
	for _, rm := range req.GetResourceMetrics() {
		for _, sm := range rm.GetScopeMetrics() {
			for _, m := range sm.GetMetrics() {
				if m.GetName() == name {
					return m
				}
			}
		}
	}
	return nil
}

// newTestSender 创建发送器并在测试结束时回收空闲连接
func newTestSender(t *testing.T, endpoint string, opts ...OTLPOption) *OTLPSender {
	t.Helper()
	sender, err := NewOTLPSender(endpoint, opts...)
	require.NoError(t, err)
	t.Cleanup(sender.client.CloseIdleConnections)
	return sender
}

func TestNewOTLPSenderEmptyEndpoint(t *testing.T) {
	_, err := NewOTLPSender("")
	assert.ErrorIs(t, err, ErrEmptyEndpoint)
}

func TestOTLPSenderSend(t *testing.T) {
	var (
		gotContentType string
		gotAuth        string
		gotBody        []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := newTestSender(t, srv.URL,
		WithServiceName("mcpkit-test"),
		WithHeaders(map[string]string{"Authorization": "Bearer token"}),
	)

	snapshot := xmetrics.Snapshot{
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Counters:  map[string]int64{xmetrics.MetricMCPCalls: 7},
		Gauges:    map[string]float64{xmetrics.GaugeActiveSessions: 2.5},
	}
	require.NoError(t, sender.Send(context.Background(), snapshot))

	assert.Equal(t, "application/x-protobuf", gotContentType)
	assert.Equal(t, "Bearer token", gotAuth)

	var req colmetricspb.ExportMetricsServiceRequest
	require.NoError(t, proto.Unmarshal(gotBody, &req))

	// resource 携带 service.name
	require.Len(t, req.GetResourceMetrics(), 1)
	attrs := req.GetResourceMetrics()[0].GetResource().GetAttributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, "service.name", attrs[0].GetKey())
	assert.Equal(t, "mcpkit-test", attrs[0].GetValue().GetStringValue())

	// 计数器编码为累计单调 Sum
	calls := findMetric(&req, "mcpkit_"+xmetrics.MetricMCPCalls)
	require.NotNil(t, calls)
	sum := calls.GetSum()
	require.NotNil(t, sum)
	assert.True(t, sum.GetIsMonotonic())
	assert.Equal(t,
		metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE,
		sum.GetAggregationTemporality())
	require.Len(t, sum.GetDataPoints(), 1)
	dp := sum.GetDataPoints()[0]
	assert.Equal(t, int64(7), dp.GetAsInt())
	assert.Equal(t, uint64(snapshot.Timestamp.UnixNano()), dp.GetTimeUnixNano())

	// 仪表编码为 Gauge
	sessions := findMetric(&req, "mcpkit_"+xmetrics.GaugeActiveSessions)
	require.NotNil(t, sessions)
	gauge := sessions.GetGauge()
	require.NotNil(t, gauge)
	require.Len(t, gauge.GetDataPoints(), 1)
	assert.InDelta(t, 2.5, gauge.GetDataPoints()[0].GetAsDouble(), 0)
}

func TestOTLPSenderMetricPrefix(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := newTestSender(t, srv.URL, WithMetricPrefix(""))

	snapshot := xmetrics.Snapshot{
		Timestamp: time.Now(),
		Counters:  map[string]int64{"plain_name": 1},
	}
	require.NoError(t, sender.Send(context.Background(), snapshot))

	var req colmetricspb.ExportMetricsServiceRequest
	require.NoError(t, proto.Unmarshal(gotBody, &req))
	assert.NotNil(t, findMetric(&req, "plain_name"))
}

func TestOTLPSenderRejectedByCollector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sender := newTestSender(t, srv.URL)

	err := sender.Send(context.Background(), xmetrics.Snapshot{Timestamp: time.Now()})
	assert.ErrorIs(t, err, ErrSendFailed)
}

func TestOTLPSenderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close()

	sender := newTestSender(t, srv.URL)
	assert.Error(t, sender.Send(context.Background(), xmetrics.Snapshot{Timestamp: time.Now()}))
}
