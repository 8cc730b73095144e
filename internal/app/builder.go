package app

import (
	"context"
	"fmt"
	"strings"

	"circadian/internal/chart"
	"circadian/internal/config"
	"circadian/internal/dataset"
	"circadian/internal/logger"
	charthttp "circadian/internal/transport/http/chart"
	"circadian/internal/view"
	"circadian/internal/visual"
)

type AppBuilder struct {
	cfg *config.Config

	sourceFn func(config.DataConfig) (dataset.Source, error)
	httpFn   func(charthttp.ServerConfig) (*charthttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithSource 替换数据来源，主要用于测试。
func WithSource(src dataset.Source) AppBuilderOption {
	return func(b *AppBuilder) {
		b.sourceFn = func(config.DataConfig) (dataset.Source, error) { return src, nil }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:      cfg,
		sourceFn: NewSource,
		httpFn:   charthttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	src, err := b.sourceFn(cfg.Data)
	if err != nil {
		return nil, err
	}
	loadOpts, err := NewLoadOptions(cfg.Data)
	if err != nil {
		return nil, err
	}

	var png charthttp.PNGFunc
	if cfg.Export.HeadlessPNG {
		if err := visual.EnsureHeadlessAvailable(ctx); err != nil {
			logger.Warnf("headless png export disabled: %v", err)
		} else {
			png = PNGExporter(cfg.Export)
		}
	}

	ctrl := view.NewController()
	server, err := b.httpFn(charthttp.ServerConfig{
		Addr:       cfg.App.HTTPAddr,
		Controller: ctrl,
		PNG:        png,
	})
	if err != nil {
		return nil, fmt.Errorf("build chart http server: %w", err)
	}

	return &App{
		cfg:      cfg,
		source:   src,
		loadOpts: loadOpts,
		ctrl:     ctrl,
		http:     server,
		Summary:  newStartupSummary(cfg, src, loadOpts, png != nil),
	}, nil
}

// NewSource 按配置创建目录或 HTTP 数据来源。
func NewSource(cfg config.DataConfig) (dataset.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", "dir":
		return dataset.NewDirSource(cfg.Dir), nil
	case "http":
		return dataset.NewHTTPSource(cfg.BaseURL, cfg.Timeout())
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
}

// NewLoadOptions resolves the manifest file and malformed-row policy.
func NewLoadOptions(cfg config.DataConfig) (dataset.LoadOptions, error) {
	policy, err := dataset.ParsePolicy(cfg.Malformed)
	if err != nil {
		return dataset.LoadOptions{}, err
	}
	opts := dataset.LoadOptions{Manifest: dataset.DefaultManifest(), Policy: policy}
	if path := strings.TrimSpace(cfg.Manifest); path != "" {
		m, err := dataset.LoadManifest(path)
		if err != nil {
			return dataset.LoadOptions{}, err
		}
		opts.Manifest = m
	}
	return opts, nil
}

// LoadFromConfig 供 CLI 一次性加载数据集，不启动 HTTP。
func LoadFromConfig(ctx context.Context, cfg *config.Config) (dataset.Datasets, error) {
	if cfg == nil {
		return dataset.Datasets{}, fmt.Errorf("nil config")
	}
	src, err := NewSource(cfg.Data)
	if err != nil {
		return dataset.Datasets{}, err
	}
	opts, err := NewLoadOptions(cfg.Data)
	if err != nil {
		return dataset.Datasets{}, err
	}
	return dataset.Load(ctx, src, opts)
}

// PNGExporter screenshots SVG charts at the fixed chart size.
func PNGExporter(exp config.ExportConfig) charthttp.PNGFunc {
	return func(ctx context.Context, svg []byte) ([]byte, error) {
		return visual.RenderPNG(ctx, svg, int(chart.Layout.Width), int(chart.Layout.Height), exp.PNGTimeout())
	}
}
