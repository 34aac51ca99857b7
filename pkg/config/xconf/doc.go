// Package xconf 提供治理与导出配置的加载、归一化与热更新。
//
// 配置文件支持 YAML 与 JSON（按扩展名自动识别），加载后立即
// 归一化：缺省字段填默认值，越界字段收敛到允许区间。调用方
// 拿到的 Settings 永远是可直接使用的。
//
// 基本用法：
//
//	cfg, err := xconf.New("/etc/mcpkit/config.yaml")
//	if err != nil {
//		return err
//	}
//	settings := cfg.Settings()
//
// 热更新：
//
//	watcher, err := cfg.Watch(func(s xconf.Settings, err error) {
//		if err != nil {
//			return
//		}
//		applySettings(s)
//	})
//	if err != nil {
//		return err
//	}
//	watcher.StartAsync()
//	defer watcher.Stop()
//
// 监视的是配置文件所在目录而非文件本身：编辑器原子写入
// （写临时文件后 rename）也能被捕获。
package xconf
