package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource struct {
	files  map[string]string
	fail   map[string]error
	opened atomic.Int32
}

func (s *mapSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s.opened.Add(1)
	if err := s.fail[name]; err != nil {
		return nil, err
	}
	body, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, os.ErrNotExist)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (s *mapSource) Describe() string { return "map" }

func fixtureFiles() map[string]string {
	files := make(map[string]string)
	for i, res := range DefaultManifest().Resources() {
		files[res.Name] = fmt.Sprintf("hour,avg_value\n0,%d\n12,%d.5\n", i, i)
	}
	return files
}

func TestLoadPopulatesBothMetricsInOrder(t *testing.T) {
	src := &mapSource{files: fixtureFiles()}
	data, err := Load(context.Background(), src, LoadOptions{})
	require.NoError(t, err)
	require.True(t, data.Loaded())
	assert.EqualValues(t, 6, src.opened.Load())

	for mi, metric := range Metrics() {
		ds := data.Metric(metric)
		for ci, cohort := range Cohorts() {
			series := ds.Series(cohort)
			require.Len(t, series, 2, "%s/%s", metric, cohort.Key())
			idx := mi*3 + ci
			assert.Equal(t, float64(idx), series[0].AvgValue)
			assert.Equal(t, float64(idx)+0.5, series[1].AvgValue)
		}
	}
}

func TestLoadFailsWhenAnyResourceFails(t *testing.T) {
	for _, res := range DefaultManifest().Resources() {
		t.Run(res.Name, func(t *testing.T) {
			files := fixtureFiles()
			delete(files, res.Name)
			data, err := Load(context.Background(), &mapSource{files: files}, LoadOptions{})
			require.ErrorIs(t, err, ErrLoadFailure)
			assert.ErrorIs(t, err, os.ErrNotExist)
			assert.Contains(t, err.Error(), res.Name)
			assert.False(t, data.Loaded(), "no partial datasets")
		})
	}
}

func TestLoadFailsOnParseError(t *testing.T) {
	files := fixtureFiles()
	files["AvgMaleAct.csv"] = "hour;avg_value\n1;2\n"
	_, err := Load(context.Background(), &mapSource{files: files}, LoadOptions{})
	require.ErrorIs(t, err, ErrLoadFailure)
	assert.Contains(t, err.Error(), "AvgMaleAct.csv")
}

func TestLoadRejectPolicy(t *testing.T) {
	files := fixtureFiles()
	files["AvgFemTempNonEst.csv"] = "hour,avg_value\n0,abc\n"

	_, err := Load(context.Background(), &mapSource{files: files}, LoadOptions{Policy: PolicyReject})
	require.ErrorIs(t, err, ErrLoadFailure)
	assert.ErrorIs(t, err, ErrMalformedSample)

	data, err := Load(context.Background(), &mapSource{files: files}, LoadOptions{Policy: PolicyDrop})
	require.NoError(t, err)
	assert.Zero(t, data.Temperature.Len(CohortFemNonEst))
}

func TestLoadNilSource(t *testing.T) {
	_, err := Load(context.Background(), nil, LoadOptions{})
	assert.ErrorIs(t, err, ErrLoadFailure)
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, NewDirSource(t.TempDir()), LoadOptions{})
	require.ErrorIs(t, err, ErrLoadFailure)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	for name, body := range fixtureFiles() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	data, err := Load(context.Background(), NewDirSource(dir), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, data.Activity.Len(CohortMale))

	_, err = NewDirSource(dir).Open(context.Background(), "../etc/passwd")
	assert.Error(t, err)
	_, err = NewDirSource(dir).Open(context.Background(), "..")
	assert.Error(t, err)
	_, err = NewDirSource(dir).Open(context.Background(), "sub/../../x.csv")
	assert.Error(t, err)
}

func TestDirSourceAllowsDotDotPrefixedNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "..backup.csv"), []byte("hour,avg_value\n0,1\n"), 0o644))

	rc, err := NewDirSource(dir).Open(context.Background(), "..backup.csv")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hour,avg_value\n0,1\n", string(body))
}

func TestHTTPSource(t *testing.T) {
	files := fixtureFiles()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[strings.TrimPrefix(r.URL.Path, "/csv/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL+"/csv", time.Second)
	require.NoError(t, err)
	data, err := Load(context.Background(), src, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, data.Temperature.Len(CohortFemEst))

	delete(files, "AvgMaleTemp.csv")
	_, err = Load(context.Background(), src, LoadOptions{})
	require.ErrorIs(t, err, ErrLoadFailure)
	assert.Contains(t, err.Error(), "404")
}
