package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// koanf 键路径分隔符与结构体标签
const (
	koanfDelim = "."
	koanfTag   = "koanf"
)

// Format 配置文件格式
type Format string

const (
	// FormatYAML YAML 格式（推荐用于 K8s ConfigMap）
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式
	FormatJSON Format = "json"
)

// Config 配置实例
//
// Settings 返回的是加载时归一化后的副本，调用方可以直接使用
// 而无需再校验区间。
type Config interface {
	// Settings 返回当前生效的配置
	Settings() Settings

	// Reload 重新加载配置文件
	// 仅对从文件创建的 Config 有效
	Reload() error

	// Path 返回配置文件路径，从字节数据创建时为空
	Path() string

	// Format 返回配置格式
	Format() Format
}

// koanfConfig Config 的 koanf 实现
type koanfConfig struct {
	path    string
	format  Format
	isBytes bool

	mu       sync.RWMutex
	settings Settings
}

// New 从文件路径创建配置实例
//
// 根据扩展名自动识别格式（.yaml/.yml 或 .json）。
func New(path string) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	c := &koanfConfig{
		path:   path,
		format: format,
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromBytes 从字节数据创建配置实例
//
// 需要显式指定格式，适用于内嵌配置与测试。空数据得到全默认
// 配置。
func NewFromBytes(data []byte, format Format) (Config, error) {
	settings, err := parseSettings(data, format)
	if err != nil {
		return nil, err
	}

	return &koanfConfig{
		format:   format,
		isBytes:  true,
		settings: settings,
	}, nil
}

// Settings 返回当前生效的配置
func (c *koanfConfig) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Reload 重新加载配置文件
func (c *koanfConfig) Reload() error {
	if c.isBytes {
		return ErrNotWatchable
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	settings, err := parseSettings(data, c.format)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()
	return nil
}

// Path 返回配置文件路径
func (c *koanfConfig) Path() string {
	return c.path
}

// Format 返回配置格式
func (c *koanfConfig) Format() Format {
	return c.format
}

// parseSettings 解析并归一化配置数据
func parseSettings(data []byte, format Format) (Settings, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Settings{}, ErrUnsupportedFormat
	}

	k := koanf.New(koanfDelim)
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return Settings{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	var settings Settings
	if err := k.UnmarshalWithConf("", &settings, koanf.UnmarshalConf{Tag: koanfTag}); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return settings.normalize(), nil
}

// detectFormat 根据文件扩展名识别配置格式
func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
