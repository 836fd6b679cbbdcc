package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusiondash/internal/config"
	"fusiondash/internal/shared/testutil"
	"fusiondash/pkg/contracts/events"
)

func newTestConfig(t *testing.T, dataFile string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Data.File = dataFile
	cfg.Security.RateLimit.Enabled = false
	cfg.Server.ShutdownTimeout = 2 * time.Second
	return cfg
}

func newTestApp(t *testing.T, dataFile string) (*Application, *httptest.Server) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	app, err := New(newTestConfig(t, dataFile), logger)
	require.NoError(t, err)

	server := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		server.Close()
		app.WebSocketHub.Stop()
	})
	return app, server
}

func getJSON(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestApplication_DashboardAPI(t *testing.T) {
	_, server := newTestApp(t, testutil.WriteStandardAllocation(t))

	status, body := getJSON(t, server.URL+"/api/dashboard?region=MH")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	kpis := data["kpis"].(map[string]interface{})
	assert.Equal(t, float64(15), kpis["no_of_loans"])
	assert.Equal(t, 3.23, kpis["collection_cr"])
	assert.Equal(t, float64(2), data["total_records"])

	status, body = getJSON(t, server.URL+"/api/dashboard/filters")
	require.Equal(t, http.StatusOK, status)
	filters := body["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"All", "KA", "MH"}, filters["regions"])
	assert.Equal(t, []interface{}{"All", "0-30", "31-60"}, filters["buckets"])
}

func TestApplication_ExportAndPage(t *testing.T) {
	_, server := newTestApp(t, testutil.WriteStandardAllocation(t))

	resp, err := http.Get(server.URL + "/api/dashboard/export?format=csv&bucket=0-30")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(raw), "\ufeff")), "\n")
	assert.Len(t, lines, 3, "header plus two 0-30 rows")

	page, err := http.Get(server.URL + "/?connect=Connected")
	require.NoError(t, err)
	defer page.Body.Close()
	html, err := io.ReadAll(page.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, string(html), "Total Records: 2")
	assert.Equal(t, "nosniff", page.Header.Get("X-Content-Type-Options"))
}

func TestApplication_MissingFile(t *testing.T) {
	_, server := newTestApp(t, filepath.Join(t.TempDir(), "absent.xlsx"))

	status, body := getJSON(t, server.URL+"/api/dashboard")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Excel file not found. Check file name & location.", body["detail"])

	status, body = getJSON(t, server.URL+"/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "not_ready", body["status"])

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(html), "Excel file not found")
	assert.NotContains(t, string(html), "Total Records")
}

func TestApplication_HealthMetricsAndNotFound(t *testing.T) {
	_, server := newTestApp(t, testutil.WriteStandardAllocation(t))

	status, body := getJSON(t, server.URL+"/api/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, _ = getJSON(t, server.URL+"/api/dashboard")
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	metrics, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(metrics), "dashboard_views_total")
	assert.Contains(t, string(metrics), "dataset_loads_total")

	status, body = getJSON(t, server.URL+"/api/nope")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "/api/nope", body["instance"])
}

func TestApplication_RefreshNotifiesWebSocketClients(t *testing.T) {
	path := testutil.WriteStandardAllocation(t)
	_, server := newTestApp(t, path)

	conn, _, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var welcome events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, events.MessageTypeConnect, welcome.Type)

	// Replace the workbook with a single-row one
	single := testutil.WriteAllocationWorkbook(t, testutil.AllocationHeader, testutil.AllocationRows[:1])
	data, err := os.ReadFile(single)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	resp, err := http.Post(server.URL+"/api/dashboard/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refreshed struct {
		Type events.MessageType     `json:"type"`
		Data events.DatasetRefreshed `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&refreshed))
	assert.Equal(t, events.MessageTypeDatasetRefreshed, refreshed.Type)
	assert.Equal(t, 1, refreshed.Data.RowCount)

	_, body := getJSON(t, server.URL+"/api/dashboard")
	assert.Equal(t, float64(1), body["data"].(map[string]interface{})["total_records"])
}

func TestApplication_ServeAndStop(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	app, err := New(newTestConfig(t, testutil.WriteStandardAllocation(t)), logger)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Serve(ctx, ln, cancel))
	assert.True(t, logs.ContainsMessage("Startup data check passed"))
	assert.Equal(t, 1, app.TableCache.Stats().Entries)

	status, _ := getJSON(t, "http://"+ln.Addr().String()+"/api/health/live")
	assert.Equal(t, http.StatusOK, status)

	require.NoError(t, app.Stop(context.Background()))
	assert.True(t, logs.ContainsMessage("Application shutdown complete"))

	_, err = http.Get("http://" + ln.Addr().String() + "/api/health")
	assert.Error(t, err)
}

func TestNew_InvalidTelemetry(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := newTestConfig(t, "allocation.xlsx")
	cfg.Telemetry.MetricExporter = "graphite"

	_, err := New(cfg, logger)
	assert.ErrorContains(t, err, "unsupported metric exporter")
}
