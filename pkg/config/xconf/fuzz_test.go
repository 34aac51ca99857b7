package xconf

import (
	"strings"
	"testing"
)

// FuzzNewFromBytes 验证任意输入下解析不崩溃，且成功解析的
// 配置始终满足归一化不变量
func FuzzNewFromBytes(f *testing.F) {
	f.Add([]byte("service_name: fuzz\n"), "yaml")
	f.Add([]byte(sampleYAML), "yaml")
	f.Add([]byte(`{"service_name":"fuzz"}`), "json")
	f.Add([]byte("defaults:\n  rate_limit_per_minute: -1\n"), "yaml")
	f.Add([]byte("export:\n  otlp_queue_capacity: 999999999\n"), "json")

	f.Fuzz(func(t *testing.T, data []byte, format string) {
		switch strings.ToLower(format) {
		case "yaml", "yml":
			format = string(FormatYAML)
		case "json":
			format = string(FormatJSON)
		default:
			return
		}

		cfg, err := NewFromBytes(data, Format(format))
		if err != nil {
			return
		}

		s := cfg.Settings()
		if s.ServiceName == "" {
			t.Fatal("normalized service name must not be empty")
		}

		checkRange := func(name string, v, lo, hi int) {
			t.Helper()
			if v < lo || v > hi {
				t.Fatalf("%s = %d outside [%d, %d]", name, v, lo, hi)
			}
		}
		checkRange("otlp_queue_capacity", s.Export.QueueCapacity, minQueueCapacity, maxQueueCapacity)
		checkRange("otlp_retry_max_attempts", s.Export.RetryMaxAttempts, minRetryMaxAttempts, maxRetryMaxAttempts)
		checkRange("otlp_retry_base_ms", s.Export.RetryBaseMS, minRetryBaseMS, maxRetryBaseMS)
		checkRange("otlp_retry_max_ms", s.Export.RetryMaxMS, minRetryMaxMS, maxRetryMaxMS)
		checkRange("otlp_export_interval_seconds", s.Export.ExportIntervalSeconds, minExportIntervalSeconds, maxExportIntervalSeconds)

		if s.Export.Enabled && s.Export.Endpoint == "" {
			t.Fatal("export must be disabled when endpoint is empty")
		}

		checkGovern := func(scope string, g GovernSettings) {
			t.Helper()
			if g.MaxConcurrentRequests <= 0 || g.QueueWaitMS <= 0 ||
				g.RateLimitPerMinute <= 0 || g.FailureThreshold <= 0 || g.CooldownMS <= 0 {
				t.Fatalf("%s govern settings not fully populated: %+v", scope, g)
			}
		}
		checkGovern("defaults", s.Defaults)
		for target, g := range s.Targets {
			checkGovern(target, g)
		}
	})
}
