package charthttp

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"circadian/internal/logger"
	webassets "circadian/internal/transport/web"
	"circadian/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// PNGFunc 把一张 SVG 图栅格化为 PNG；为空时不注册 /png 路由。
type PNGFunc func(ctx context.Context, svg []byte) ([]byte, error)

// Server 提供图表页面与 /api 接口。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述 chart HTTP 服务依赖。
type ServerConfig struct {
	Addr       string
	Controller *view.Controller
	PNG        PNGFunc
	// WebDir overrides the embedded page assets; it must hold templates/ and static/.
	WebDir string
}

// NewServer 构建 chart HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Controller == nil {
		return nil, errors.New("chart http server requires a view controller")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	if err := loadTemplates(router, cfg.WebDir); err != nil {
		return nil, err
	}
	if err := serveStatic(router, cfg.WebDir); err != nil {
		return nil, err
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	chartRouter := NewRouter(cfg.Controller, cfg.PNG)
	router.GET("/", chartRouter.handleIndex)
	chartRouter.Register(router.Group("/api"))

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func loadTemplates(router *gin.Engine, webDir string) error {
	if webDir != "" {
		base := filepath.Join(webDir, "templates")
		files, _ := filepath.Glob(filepath.Join(base, "*.html"))
		if len(files) > 0 {
			router.LoadHTMLFiles(files...)
			return nil
		}
		logger.Warnf("no templates under %s, using embedded page", base)
	}
	const embeddedTplBase = "templates"
	fsys, err := fs.Sub(webassets.Templates, embeddedTplBase)
	if err != nil {
		return err
	}
	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no templates found in embedded FS")
	}
	tmpl, err := template.New("chart").ParseFS(fsys, files...)
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

func serveStatic(router *gin.Engine, webDir string) error {
	if webDir != "" {
		base := filepath.Join(webDir, "static")
		if stat, err := os.Stat(base); err == nil && stat.IsDir() {
			router.Static("/static", base)
			return nil
		}
	}
	sub, err := fs.Sub(webassets.Static, "static")
	if err != nil {
		return err
	}
	router.StaticFS("/static", http.FS(sub))
	return nil
}

// requestLogger 为每个请求分配 request id 并记录耗时。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		c.Next()
		logger.With("req", reqID).Debug("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"dur", time.Since(start))
	}
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
