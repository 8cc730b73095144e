package config

import (
	"strings"
	"time"
)

// Config 是 circadian 的主配置载体。
type Config struct {
	App    AppConfig    `toml:"app"`
	Data   DataConfig   `toml:"data"`
	Export ExportConfig `toml:"export"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogPath   string `toml:"log_path"`
	HTTPAddr  string `toml:"http_addr"`
}

// DataConfig 描述六个 CSV 资源的来源与异常行处理策略。
type DataConfig struct {
	Source         string `toml:"source"`   // "dir" | "http"
	Dir            string `toml:"dir"`      // source=dir 时的目录
	BaseURL        string `toml:"base_url"` // source=http 时的前缀
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Manifest       string `toml:"manifest"`  // 可选，覆盖资源文件名
	Malformed      string `toml:"malformed"` // passthrough | drop | reject
	WatchManifest  bool   `toml:"watch_manifest"`
}

// Timeout 返回 HTTP 拉取的超时时间。
func (d DataConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return time.Duration(defaultDataTimeout) * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// ExportConfig 控制 PNG 快照导出（依赖本机 Chrome）。
type ExportConfig struct {
	HeadlessPNG       bool `toml:"headless_png"`
	PNGTimeoutSeconds int  `toml:"png_timeout_seconds"`
}

func (e ExportConfig) PNGTimeout() time.Duration {
	if e.PNGTimeoutSeconds <= 0 {
		return time.Duration(defaultPNGTimeout) * time.Second
	}
	return time.Duration(e.PNGTimeoutSeconds) * time.Second
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
