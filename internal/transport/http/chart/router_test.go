package charthttp

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"circadian/internal/dataset"
	"circadian/internal/logger"
	"circadian/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func sampleData() dataset.Datasets {
	temp := dataset.NewMetricDataset(dataset.MetricTemperature,
		dataset.CohortSeries{{Hour: 0, AvgValue: 36.5}, {Hour: 12, AvgValue: 37.2}},
		dataset.CohortSeries{{Hour: 0, AvgValue: 36.4}, {Hour: 12, AvgValue: 37.0}},
		dataset.CohortSeries{{Hour: 0, AvgValue: 36.1}, {Hour: 12, AvgValue: 36.8}},
	)
	act := dataset.NewMetricDataset(dataset.MetricActivity,
		dataset.CohortSeries{{Hour: 0, AvgValue: 10}, {Hour: 12, AvgValue: 40}},
		dataset.CohortSeries{{Hour: 0, AvgValue: 12}, {Hour: 12, AvgValue: 30}},
		dataset.CohortSeries{{Hour: 0, AvgValue: 8}, {Hour: 12, AvgValue: 25}},
	)
	return dataset.NewDatasets(temp, act)
}

func newTestServer(t *testing.T, loaded bool, png PNGFunc) (*view.Controller, http.Handler) {
	t.Helper()
	ctrl := view.NewController()
	if loaded {
		require.NoError(t, ctrl.Loaded(sampleData()))
	}
	srv, err := NewServer(ServerConfig{Controller: ctrl, PNG: png})
	require.NoError(t, err)
	return ctrl, srv.Handler()
}

func do(h http.Handler, method, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresController(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
}

func TestHealthzAndRequestID(t *testing.T) {
	_, h := newTestServer(t, false, nil)
	rec := do(h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = do(h, http.MethodGet, "/healthz", requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRequestLogCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevel("debug")
	defer func() {
		logger.SetLevel("info")
		logger.SetOutput(os.Stdout)
	}()

	_, h := newTestServer(t, false, nil)
	do(h, http.MethodGet, "/healthz?x=1", requestIDHeader, "req-42")

	out := buf.String()
	assert.Contains(t, out, "req=req-42")
	assert.Contains(t, out, `path="/healthz?x=1"`)
	assert.Contains(t, out, "status=200")
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t, true, nil)
	rec := do(h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="tempBtn" class="toggle-btn active"`)
	assert.Contains(t, body, `id="actBtn" class="toggle-btn"`)
	assert.Contains(t, body, `id="chart"`)

	rec = do(h, http.MethodGet, "/static/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-tooltip-")
}

// 页面在加载完成前打开：先是 unrendered，Loaded 之后 /api/view 与页面都切到温度图。
func TestIndexBeforeAndAfterLoad(t *testing.T) {
	ctrl, h := newTestServer(t, false, nil)

	rec := do(h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-state="unrendered"`)
	assert.NotContains(t, body, "toggle-btn active")

	rec = do(h, http.MethodGet, "/api/view")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unrendered", gjson.Get(rec.Body.String(), "state").String())
	assert.False(t, gjson.Get(rec.Body.String(), "load_error").Exists())
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/api/view/svg").Code)

	require.NoError(t, ctrl.Loaded(sampleData()))

	rec = do(h, http.MethodGet, "/api/view")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "temperature", gjson.Get(rec.Body.String(), "state").String())
	assert.Equal(t, "tempBtn", gjson.Get(rec.Body.String(), "buttons.#(active==true).id").String())

	rec = do(h, http.MethodGet, "/api/view/svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Average Temperature Throughout the Day")

	body = do(h, http.MethodGet, "/").Body.String()
	assert.Contains(t, body, `data-state="temperature"`)
	assert.Contains(t, body, `id="tempBtn" class="toggle-btn active"`)

	// 前端轮询 /api/view 直到渲染完成或出现 load_error
	js := do(h, http.MethodGet, "/static/app.js").Body.String()
	assert.Contains(t, js, "awaitInitialRender")
	assert.Contains(t, js, "load_error")
}

func TestChartEndpoints(t *testing.T) {
	_, h := newTestServer(t, true, nil)

	rec := do(h, http.MethodGet, "/api/chart/activity")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "activity", gjson.Get(body, "kind").String())
	assert.Equal(t, 800.0, gjson.Get(body, "width").Float())
	assert.Equal(t, 200.0, gjson.Get(body, "tooltip.fade_in_ms").Float())
	assert.Equal(t, "svg", gjson.Get(body, "root.tag").String())

	rec = do(h, http.MethodGet, "/api/chart/temperature/svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "image/svg+xml"))
	assert.Contains(t, rec.Body.String(), "Average Temperature Throughout the Day")

	rec = do(h, http.MethodGet, "/api/chart/temp/echarts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Female (Estrus)")

	rec = do(h, http.MethodGet, "/api/chart/humidity/svg")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), "unknown chart kind")

	// PNG export not configured
	rec = do(h, http.MethodGet, "/api/chart/temperature/png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChartEndpointsBeforeLoad(t *testing.T) {
	ctrl, h := newTestServer(t, false, nil)
	ctrl.Failed(errors.New("fetch AvgMaleAct.csv: 404"))

	for _, path := range []string{"/api/chart/temperature", "/api/chart/activity/svg", "/api/view/svg", "/api/datasets"} {
		rec := do(h, http.MethodGet, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Contains(t, gjson.Get(rec.Body.String(), "load_error").String(), "AvgMaleAct.csv", path)
	}
	rec := do(h, http.MethodPost, "/api/view/activity")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "load_error").String(), "AvgMaleAct.csv")

	rec = do(h, http.MethodGet, "/api/view")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unrendered", gjson.Get(rec.Body.String(), "state").String())
	assert.Equal(t, 0, int(gjson.Get(rec.Body.String(), "renders").Int()))
}

func TestToggleView(t *testing.T) {
	ctrl, h := newTestServer(t, true, nil)

	rec := do(h, http.MethodPost, "/api/view/activity")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Average Activity Throughout the Day")
	assert.Equal(t, view.StateActivity, ctrl.Snapshot().State)

	rec = do(h, http.MethodPost, "/api/view/temperature", "Accept", "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "temperature", gjson.Get(body, "state").String())
	assert.Equal(t, "tempBtn", gjson.Get(body, "buttons.#(active==true).id").String())
	assert.Equal(t, 3, int(gjson.Get(body, "renders").Int()))

	rec = do(h, http.MethodGet, "/api/view/svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Temperature (°C)")

	rec = do(h, http.MethodPost, "/api/view/nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, view.StateTemperature, ctrl.Snapshot().State)
}

func TestDatasetsEndpoint(t *testing.T) {
	_, h := newTestServer(t, true, nil)
	rec := do(h, http.MethodGet, "/api/datasets")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 6, int(gjson.Get(body, "datasets.#").Int()))
	assert.Equal(t, "Female (Estrus)", gjson.Get(body, "datasets.0.name").String())
	assert.Equal(t, "red", gjson.Get(body, "datasets.0.color").String())
	assert.Equal(t, 2, int(gjson.Get(body, "datasets.0.samples").Int()))
	assert.Equal(t, 37.2, gjson.Get(body, "datasets.0.max_value").Float())
	assert.Equal(t, "activity", gjson.Get(body, "datasets.5.metric").String())
}

func TestPNGEndpoint(t *testing.T) {
	var got []byte
	png := func(_ context.Context, svg []byte) ([]byte, error) {
		got = svg
		return []byte("\x89PNG"), nil
	}
	_, h := newTestServer(t, true, png)
	rec := do(h, http.MethodGet, "/api/chart/activity/png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, string(got), "<svg")

	failing := func(context.Context, []byte) ([]byte, error) { return nil, errors.New("no chrome") }
	_, h = newTestServer(t, true, failing)
	rec = do(h, http.MethodGet, "/api/chart/activity/png")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
