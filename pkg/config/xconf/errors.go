package xconf

import "errors"

var (
	// ErrEmptyPath 配置文件路径为空
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 不支持的配置格式
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 配置加载失败
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 配置解析失败
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrNotWatchable 从字节数据创建的配置不支持监视与重载
	ErrNotWatchable = errors.New("xconf: config created from bytes cannot be reloaded")
)
