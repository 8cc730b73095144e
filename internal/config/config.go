package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// PathEnv names the config file when --config is not given.
	PathEnv = "CIRCADIAN_CONFIG"
	// DefaultPath is used when neither the flag nor PathEnv is set; it may be absent.
	DefaultPath = "configs/config.yaml"

	envPrefix = "CIRCADIAN_"
)

// envKeys 可由环境变量覆盖的字段，例如 CIRCADIAN_DATA_DIR 覆盖 data.dir。
var envKeys = []string{
	"app.env",
	"app.log_level",
	"app.log_format",
	"app.http_addr",
	"data.source",
	"data.dir",
	"data.base_url",
	"data.manifest",
	"data.malformed",
}

// ResolvePath picks the config file: explicit flag, then $CIRCADIAN_CONFIG,
// then DefaultPath. explicit is false only for the default path.
func ResolvePath(flagPath string) (path string, explicit bool) {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p, true
	}
	if p := strings.TrimSpace(os.Getenv(PathEnv)); p != "" {
		return p, true
	}
	return DefaultPath, false
}

// LoadFrom 解析路径后加载：显式指定的文件必须存在，默认路径缺失时使用默认配置。
func LoadFrom(flagPath string) (*Config, string, error) {
	path, explicit := ResolvePath(flagPath)
	if explicit {
		cfg, err := Load(path)
		return cfg, path, err
	}
	cfg, err := LoadOrDefault(path)
	return cfg, path, err
}

// LoadOrDefault 读取配置；路径为空或文件不存在时返回默认配置（仍应用环境变量覆盖）。
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			return Load(path)
		}
	}
	return decode(viper.New())
}

// Load merges the include chain of path (included files first, the including
// file last) and then applies CIRCADIAN_* environment overrides.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	chain := &includeChain{visited: map[string]bool{}, active: map[string]bool{}}
	if err := chain.walk(filepath.Clean(root)); err != nil {
		return nil, err
	}
	v := viper.New()
	for _, file := range chain.files {
		layer, err := readYAML(file)
		if err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", file, err)
		}
		if err := v.MergeConfigMap(layer.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging config file failed (%s): %w", file, err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	applyEnvOverrides(v)
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	markLeaves("", v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func applyEnvOverrides(v *viper.Viper) {
	for _, key := range envKeys {
		if val, ok := os.LookupEnv(envName(key)); ok && strings.TrimSpace(val) != "" {
			v.Set(key, strings.TrimSpace(val))
		}
	}
}

func readYAML(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v, nil
}

// includeChain 按深度优先顺序展开 include，检测循环引用。
type includeChain struct {
	files   []string
	visited map[string]bool
	active  map[string]bool
}

func (c *includeChain) walk(path string) error {
	if c.active[path] {
		return fmt.Errorf("include cycle detected: %s", path)
	}
	if c.visited[path] {
		return nil
	}
	c.active[path] = true
	layer, err := readYAML(path)
	if err != nil {
		return fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	includes, err := includeList(layer)
	if err != nil {
		return fmt.Errorf("parsing include failed (%s): %w", path, err)
	}
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if err := c.walk(filepath.Clean(inc)); err != nil {
			return err
		}
	}
	delete(c.active, path)
	c.visited[path] = true
	c.files = append(c.files, path)
	return nil
}

// includeList reads the optional top-level `include` list of file paths.
func includeList(v *viper.Viper) ([]string, error) {
	raw := v.Get("include")
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("include must be a string array")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("include only supports strings")
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// markLeaves records every explicitly set key path, e.g. "data.dir".
func markLeaves(prefix string, node any, dest keySet) {
	m, ok := node.(map[string]any)
	if !ok {
		dest.mark(prefix)
		return
	}
	for k, child := range m {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		markLeaves(key, child, dest)
	}
}
