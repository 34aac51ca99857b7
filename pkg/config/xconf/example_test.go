package xconf_test

import (
	"fmt"

	"github.com/omeyang/mcpkit/pkg/config/xconf"
)

// ExampleNewFromBytes 演示从内存数据加载配置
func ExampleNewFromBytes() {
	data := []byte(`
service_name: my-agent
defaults:
  rate_limit_per_minute: 120
targets:
  weather-api:
    max_concurrent_requests: 2
`)

	cfg, err := xconf.NewFromBytes(data, xconf.FormatYAML)
	if err != nil {
		fmt.Println("加载失败:", err)
		return
	}

	s := cfg.Settings()
	fmt.Println(s.ServiceName)
	fmt.Println(s.Defaults.RateLimitPerMinute)
	// 目标覆盖中未设置的字段继承全局默认
	fmt.Println(s.Targets["weather-api"].RateLimitPerMinute)
	// Output:
	// my-agent
	// 120
	// 120
}
