package xexport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	"google.golang.org/protobuf/proto"

	"github.com/omeyang/mcpkit/pkg/observability/xmetrics"
)

const (
	defaultServiceName  = "mcpkit"
	defaultMetricPrefix = "mcpkit_"
	defaultScopeName    = "mcpkit.export"
	defaultScopeVersion = "1"
	defaultSendTimeout  = 10 * time.Second

	contentTypeProtobuf = "application/x-protobuf"
)

// OTLPSender 通过 OTLP/HTTP 上报指标快照
//
// 快照编码为 ExportMetricsServiceRequest 后以 protobuf 二进制
// POST 到采集端点。计数器编码为累计单调 Sum，仪表编码为 Gauge。
type OTLPSender struct {
	endpoint     string
	headers      map[string]string
	serviceName  string
	metricPrefix string
	client       *http.Client
}

// OTLPOption OTLP 发送器选项
type OTLPOption func(*OTLPSender)

// WithHeaders 设置附加到每次发送的请求头（例如鉴权令牌）
func WithHeaders(headers map[string]string) OTLPOption {
	return func(s *OTLPSender) {
		if len(headers) == 0 {
			return
		}
		s.headers = make(map[string]string, len(headers))
		for k, v := range headers {
			s.headers[k] = v
		}
	}
}

// WithServiceName 设置 resource 属性 service.name
//
// 默认值："mcpkit"。
func WithServiceName(name string) OTLPOption {
	return func(s *OTLPSender) {
		if name != "" {
			s.serviceName = name
		}
	}
}

// WithMetricPrefix 设置导出指标名前缀
//
// 默认值："mcpkit_"。
func WithMetricPrefix(prefix string) OTLPOption {
	return func(s *OTLPSender) {
		s.metricPrefix = prefix
	}
}

// WithHTTPClient 注入自定义 HTTP 客户端
func WithHTTPClient(client *http.Client) OTLPOption {
	return func(s *OTLPSender) {
		if client != nil {
			s.client = client
		}
	}
}

// NewOTLPSender 创建 OTLP 发送器
func NewOTLPSender(endpoint string, opts ...OTLPOption) (*OTLPSender, error) {
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	s := &OTLPSender{
		endpoint:     endpoint,
		serviceName:  defaultServiceName,
		metricPrefix: defaultMetricPrefix,
		client:       &http.Client{Timeout: defaultSendTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send 发送一份快照
func (s *OTLPSender) Send(ctx context.Context, snapshot xmetrics.Snapshot) error {
	payload, err := proto.Marshal(s.buildRequest(snapshot))
	if err != nil {
		return fmt.Errorf("xexport: marshal payload failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("xexport: build request failed: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeProtobuf)
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("xexport: post failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %s", ErrSendFailed, resp.Status)
	}
	return nil
}

// buildRequest 将快照编码为 OTLP 导出请求
func (s *OTLPSender) buildRequest(snapshot xmetrics.Snapshot) *colmetricspb.ExportMetricsServiceRequest {
	ts := uint64(snapshot.Timestamp.UnixNano()) //nolint:gosec // 时间戳恒为正

	metrics := make([]*metricspb.Metric, 0, len(snapshot.Counters)+len(snapshot.Gauges))
	for _, name := range sortedKeys(snapshot.Counters) {
		metrics = append(metrics, s.sumMetric(name, snapshot.Counters[name], ts))
	}
	for _, name := range sortedKeys(snapshot.Gauges) {
		metrics = append(metrics, s.gaugeMetric(name, snapshot.Gauges[name], ts))
	}

	return &colmetricspb.ExportMetricsServiceRequest{
		ResourceMetrics: []*metricspb.ResourceMetrics{{
			Resource: &resourcepb.Resource{
				Attributes: []*commonpb.KeyValue{{
					Key: "service.name",
					Value: &commonpb.AnyValue{
						Value: &commonpb.AnyValue_StringValue{StringValue: s.serviceName},
					},
				}},
			},
			ScopeMetrics: []*metricspb.ScopeMetrics{{
				Scope: &commonpb.InstrumentationScope{
					Name:    defaultScopeName,
					Version: defaultScopeVersion,
				},
				Metrics: metrics,
			}},
		}},
	}
}

// sumMetric 将计数器编码为累计单调 Sum
func (s *OTLPSender) sumMetric(name string, value int64, ts uint64) *metricspb.Metric {
	return &metricspb.Metric{
		Name: s.metricPrefix + name,
		Unit: "1",
		Data: &metricspb.Metric_Sum{
			Sum: &metricspb.Sum{
				DataPoints: []*metricspb.NumberDataPoint{{
					StartTimeUnixNano: ts,
					TimeUnixNano:      ts,
					Value:             &metricspb.NumberDataPoint_AsInt{AsInt: max(value, 0)},
				}},
				AggregationTemporality: metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE,
				IsMonotonic:            true,
			},
		},
	}
}

// gaugeMetric 将仪表编码为 Gauge
func (s *OTLPSender) gaugeMetric(name string, value float64, ts uint64) *metricspb.Metric {
	return &metricspb.Metric{
		Name: s.metricPrefix + name,
		Unit: "1",
		Data: &metricspb.Metric_Gauge{
			Gauge: &metricspb.Gauge{
				DataPoints: []*metricspb.NumberDataPoint{{
					StartTimeUnixNano: ts,
					TimeUnixNano:      ts,
					Value:             &metricspb.NumberDataPoint_AsDouble{AsDouble: value},
				}},
			},
		},
	}
}

// sortedKeys 返回排序后的键集合，保证载荷编码确定
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// 确保 OTLPSender 实现了 Sender 接口
var _ Sender = (*OTLPSender)(nil)
