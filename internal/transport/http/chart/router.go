package charthttp

import (
	"bytes"
	"errors"
	"net/http"

	"circadian/internal/chart"
	"circadian/internal/dataset"
	"circadian/internal/logger"
	"circadian/internal/view"
	"circadian/internal/visual"

	"github.com/gin-gonic/gin"
)

const (
	contentTypeSVG  = "image/svg+xml; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// Router 暴露图表渲染与视图切换接口。
type Router struct {
	Controller *view.Controller
	PNG        PNGFunc
}

// NewRouter 构造 chart HTTP router。
func NewRouter(ctrl *view.Controller, png PNGFunc) *Router {
	return &Router{Controller: ctrl, PNG: png}
}

// Register 将 /api 路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/chart/:kind", r.handleChartJSON)
	group.GET("/chart/:kind/svg", r.handleChartSVG)
	group.GET("/chart/:kind/echarts", r.handleChartECharts)
	if r.PNG != nil {
		group.GET("/chart/:kind/png", r.handleChartPNG)
	}
	group.GET("/view", r.handleView)
	group.GET("/view/svg", r.handleViewSVG)
	group.POST("/view/:kind", r.handleToggle)
	group.GET("/datasets", r.handleDatasets)
}

type pageButton struct {
	ID     string
	Kind   string
	Label  string
	Active bool
}

var buttonLabels = map[string]string{
	view.ButtonTemperature: "Temperature",
	view.ButtonActivity:    "Activity",
}

func (r *Router) handleIndex(c *gin.Context) {
	snap := r.Controller.Snapshot()
	buttons := make([]pageButton, 0, len(snap.Buttons))
	for _, b := range snap.Buttons {
		buttons = append(buttons, pageButton{
			ID:     b.ID,
			Kind:   b.Kind.String(),
			Label:  buttonLabels[b.ID],
			Active: b.Active,
		})
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":   "Circadian Rhythms of Mice",
		"Buttons": buttons,
		"State":   snap.State.String(),
	})
}

// loadedKind 解析 :kind 并确认数据已加载；失败时已写好响应。
func (r *Router) loadedKind(c *gin.Context) (chart.Kind, dataset.Datasets, bool) {
	kind, err := chart.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, dataset.Datasets{}, false
	}
	data, ok := r.Controller.Datasets()
	if !ok {
		writeNotLoaded(c, r.Controller.Snapshot())
		return 0, dataset.Datasets{}, false
	}
	return kind, data, true
}

func writeNotLoaded(c *gin.Context, snap view.Snapshot) {
	body := gin.H{"error": chart.ErrNotLoaded.Error()}
	if snap.LoadErr != nil {
		body["load_error"] = snap.LoadErr.Error()
	}
	c.JSON(http.StatusServiceUnavailable, body)
}

func (r *Router) renderScene(c *gin.Context) (*chart.Scene, bool) {
	kind, data, ok := r.loadedKind(c)
	if !ok {
		return nil, false
	}
	scene, err := chart.Render(kind, data)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return scene, true
}

func (r *Router) handleChartJSON(c *gin.Context) {
	scene, ok := r.renderScene(c)
	if !ok {
		return
	}
	raw, err := chart.EncodeJSON(scene)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, raw)
}

func (r *Router) handleChartSVG(c *gin.Context) {
	scene, ok := r.renderScene(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := chart.EncodeSVG(&buf, scene); err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypeSVG, buf.Bytes())
}

func (r *Router) handleChartECharts(c *gin.Context) {
	kind, data, ok := r.loadedKind(c)
	if !ok {
		return
	}
	page, err := visual.BuildEChartsPage(kind, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, page)
}

func (r *Router) handleChartPNG(c *gin.Context) {
	scene, ok := r.renderScene(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := chart.EncodeSVG(&buf, scene); err != nil {
		writeError(c, err)
		return
	}
	img, err := r.PNG(c.Request.Context(), buf.Bytes())
	if err != nil {
		logger.Warnf("png export failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

type viewResponse struct {
	State     string        `json:"state"`
	Buttons   []view.Button `json:"buttons"`
	Renders   int           `json:"renders"`
	LoadError string        `json:"load_error,omitempty"`
}

func toViewResponse(snap view.Snapshot) viewResponse {
	resp := viewResponse{State: snap.State.String(), Buttons: snap.Buttons, Renders: snap.Renders}
	if snap.LoadErr != nil {
		resp.LoadError = snap.LoadErr.Error()
	}
	return resp
}

func (r *Router) handleView(c *gin.Context) {
	c.JSON(http.StatusOK, toViewResponse(r.Controller.Snapshot()))
}

// handleViewSVG 返回当前挂载点的内容。
func (r *Router) handleViewSVG(c *gin.Context) {
	snap := r.Controller.Snapshot()
	if snap.State == view.StateUnrendered {
		writeNotLoaded(c, snap)
		return
	}
	c.Data(http.StatusOK, contentTypeSVG, snap.SVG)
}

func (r *Router) handleToggle(c *gin.Context) {
	kind, err := chart.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := r.Controller.Toggle(kind)
	if errors.Is(err, chart.ErrNotLoaded) {
		writeNotLoaded(c, snap)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, toViewResponse(snap))
		return
	}
	c.Data(http.StatusOK, contentTypeSVG, snap.SVG)
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat("image/svg+xml", gin.MIMEJSON) == gin.MIMEJSON
}

type datasetEntry struct {
	dataset.CohortSummary
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (r *Router) handleDatasets(c *gin.Context) {
	data, ok := r.Controller.Datasets()
	if !ok {
		writeNotLoaded(c, r.Controller.Snapshot())
		return
	}
	sums := dataset.Summarize(data)
	out := make([]datasetEntry, 0, len(sums))
	for _, s := range sums {
		cohort, err := dataset.ParseCohort(s.Cohort)
		if err != nil {
			writeError(c, err)
			return
		}
		out = append(out, datasetEntry{
			CohortSummary: s,
			Name:          chart.CohortName(cohort),
			Color:         chart.CohortColor(cohort),
		})
	}
	c.JSON(http.StatusOK, gin.H{"datasets": out})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chart.ErrUnknownKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, chart.ErrNotLoaded):
		writeNotLoaded(c, view.Snapshot{})
	default:
		logger.Errorf("chart request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
