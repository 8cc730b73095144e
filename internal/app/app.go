package app

import (
	"context"
	"fmt"

	"circadian/internal/config"
	"circadian/internal/dataset"
	"circadian/internal/logger"
	charthttp "circadian/internal/transport/http/chart"
	"circadian/internal/view"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载数据集→通知视图控制器→提供 HTTP 页面。
type App struct {
	cfg      *config.Config
	source   dataset.Source
	loadOpts dataset.LoadOptions
	ctrl     *view.Controller
	http     *charthttp.Server
	Summary  *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 启动 HTTP 服务并在后台加载数据集，直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}

	if a.cfg.Data.WatchManifest {
		if err := dataset.WatchManifest(a.cfg.Data.Manifest, nil); err != nil {
			logger.Warnf("manifest watch disabled: %v", err)
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	if a.http != nil {
		group.Go(func() error {
			if err := a.http.Start(ctx); err != nil {
				return fmt.Errorf("chart http server error: %w", err)
			}
			return nil
		})
	}
	group.Go(func() error {
		// 加载失败只记录，页面与健康检查继续服务
		_ = a.LoadDatasets(ctx)
		return nil
	})
	return group.Wait()
}

// LoadDatasets performs the one-shot load and hands the outcome to the view
// controller. A failure leaves the chart unrendered; it is never retried.
func (a *App) LoadDatasets(ctx context.Context) error {
	logger.Infof("loading datasets from %s", a.source.Describe())
	data, err := dataset.Load(ctx, a.source, a.loadOpts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Errorf("Error loading CSV files: %v", err)
		a.ctrl.Failed(err)
		return err
	}
	if err := a.ctrl.Loaded(data); err != nil {
		logger.Errorf("initial render failed: %v", err)
		return err
	}
	logger.Infof("✓ datasets loaded, %s view rendered", a.ctrl.Snapshot().State)
	return nil
}

// Controller exposes the view controller (for tests and the CLI).
func (a *App) Controller() *view.Controller {
	if a == nil {
		return nil
	}
	return a.ctrl
}

// Server exposes the chart HTTP server.
func (a *App) Server() *charthttp.Server {
	if a == nil {
		return nil
	}
	return a.http
}
