package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agrivoltaics/internal/api/handlers"
	"agrivoltaics/internal/api/models"
	"agrivoltaics/internal/config"
	"agrivoltaics/internal/pipeline"
	"agrivoltaics/internal/solar"
	"agrivoltaics/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestRouter(t *testing.T, withArchive bool) *gin.Engine {
	t.Helper()
	opts := solar.DefaultOptions()
	opts.GroundSamples = 20
	opts.MaxRows = 3

	d := Deps{
		Engine: pipeline.New(opts),
		Sites:  handlers.NewSiteHandlerWithDir(filepath.Join("..", "..", "examples", "sites")),
	}
	if withArchive {
		a, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { a.Close() })
		d.Archive = a
	}
	return NewRouter(d)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorDetail {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t, false), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEvaluateDefaultScenario(t *testing.T) {
	w := do(t, newTestRouter(t, false), http.MethodPost, "/api/v1/evaluate", models.EvaluateRequest{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Monthly, 12)
	assert.Equal(t, "January", resp.Monthly[0].Month)
	assert.Equal(t, "potatoes", resp.Crop)
	assert.Equal(t, "fixed", resp.Mounting)
	assert.Greater(t, resp.Economics.LCOE, 40.0)
	assert.Less(t, resp.Economics.LCOE, 100.0)
	assert.Empty(t, resp.ID)
}

func TestEvaluateErrors(t *testing.T) {
	r := newTestRouter(t, false)

	w := do(t, r, http.MethodPost, "/api/v1/evaluate", models.EvaluateRequest{Crop: "rice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_CROP", decodeError(t, w).Code)

	pitch := 2.0
	req := models.EvaluateRequest{Site: config.SiteOverride{Pitch: &pitch}}
	w = do(t, r, http.MethodPost, "/api/v1/evaluate", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, "INVALID_SITE", detail.Code)
	assert.Equal(t, "row_width", detail.Details["field"])

	w = do(t, r, http.MethodPost, "/api/v1/evaluate", models.EvaluateRequest{SiteFile: "atlantis"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/evaluate", models.EvaluateRequest{Save: true})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "ARCHIVE_DISABLED", decodeError(t, w).Code)

	bad := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec).Code)
}

func TestEvaluateZeroExport(t *testing.T) {
	req := models.EvaluateRequest{}
	for i := 0; i < 12; i++ {
		req.Usage.MonthlyKWh = append(req.Usage.MonthlyKWh, 1e9)
	}
	w := do(t, newTestRouter(t, false), http.MethodPost, "/api/v1/evaluate", req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ZERO_EXPORT", decodeError(t, w).Code)
}

func TestEvaluateFlatPanels(t *testing.T) {
	r := newTestRouter(t, false)
	zero := 0.0

	w := do(t, r, http.MethodPost, "/api/v1/evaluate", models.EvaluateRequest{SiteFile: "malta"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tilted models.EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tilted))

	w = do(t, r, http.MethodPost, "/api/v1/evaluate", models.EvaluateRequest{
		SiteFile: "malta",
		Site:     config.SiteOverride{Tilt: &zero},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var flat models.EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flat))

	// A horizontal plane sees far less of the low winter sun.
	assert.Less(t, flat.Monthly[0].PanelIrradiance, 0.8*tilted.Monthly[0].PanelIrradiance)

	w = do(t, r, http.MethodPost, "/api/v1/evaluate/compare", models.CompareRequest{
		Base:       models.EvaluateRequest{SiteFile: "malta"},
		Variations: []models.Variation{{Name: "flat", Site: config.SiteOverride{Tilt: &zero}}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cmp models.CompareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cmp))
	require.Len(t, cmp.Comparison, 1)
	require.NotNil(t, cmp.Comparison[0].Economics)
	assert.InDelta(t, flat.Economics.AnnualExportKWh, cmp.Comparison[0].Economics.AnnualExportKWh, 1e-6)
}

func TestSaveListGetReportDelete(t *testing.T) {
	r := newTestRouter(t, true)

	w := do(t, r, http.MethodPost, "/api/v1/evaluate", models.EvaluateRequest{SiteFile: "malta", Save: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved models.EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "malta", saved.Name)

	w = do(t, r, http.MethodGet, "/api/v1/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.RunListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, saved.ID, list.Runs[0].ID)

	for _, q := range []string{"0", "-1", "many"} {
		w = do(t, r, http.MethodGet, "/api/v1/runs?limit="+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	w = do(t, r, http.MethodGet, "/api/v1/runs?limit=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/runs/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run models.RunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, saved.Economics, run.Economics)
	assert.Equal(t, saved.Monthly, run.Monthly)

	w = do(t, r, http.MethodGet, "/api/v1/runs/"+saved.ID+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# malta")

	w = do(t, r, http.MethodGet, "/api/v1/runs/"+saved.ID+"/report?format=html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<table>")

	w = do(t, r, http.MethodGet, "/api/v1/runs/"+saved.ID+"/report?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/api/v1/runs/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/runs/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompare(t *testing.T) {
	zero, halfArea := 0.0, 50000.0
	req := models.CompareRequest{
		Variations: []models.Variation{
			{Name: "half", Site: config.SiteOverride{Area: &halfArea}},
			{Name: "rice", Crop: "rice"},
			{Name: "no-subsidy", SubsidyEUR: &zero},
		},
	}

	w := do(t, newTestRouter(t, false), http.MethodPost, "/api/v1/evaluate/compare", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CompareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Comparison, 3)

	half, rice, full := resp.Comparison[0], resp.Comparison[1], resp.Comparison[2]
	require.NotNil(t, half.Economics)
	require.NotNil(t, full.Economics)
	assert.InDelta(t, full.Economics.AnnualExportKWh/2, half.Economics.AnnualExportKWh, 1)
	require.NotNil(t, rice.Error)
	assert.Equal(t, "UNSUPPORTED_CROP", rice.Error.Code)

	w = do(t, newTestRouter(t, false), http.MethodPost, "/api/v1/evaluate/compare", models.CompareRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	r := newTestRouter(t, false)

	w := do(t, r, http.MethodGet, "/api/v1/crops", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var crops struct {
		Crops []models.CropInfo `json:"crops"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &crops))
	require.Len(t, crops.Crops, 1)
	assert.Equal(t, "potatoes", crops.Crops[0].Name)
	assert.Equal(t, "vegetative", crops.Crops[0].Months[0].Stage)
	assert.InDelta(t, 500*0.000217, crops.Crops[0].Months[0].MinKW, 1e-12)

	w = do(t, r, http.MethodGet, "/api/v1/crops/wheat", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/mountings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "single_axis")

	w = do(t, r, http.MethodGet, "/api/v1/sites", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sites struct {
		Sites []models.SiteInfo `json:"sites"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sites))
	ids := []string{}
	for _, s := range sites.Sites {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, "malta")
	assert.Contains(t, ids, "malta_tracker")

	w = do(t, r, http.MethodGet, "/api/v1/sites/atlantis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSweep(t *testing.T) {
	req := models.SweepRequest{Kind: "area", Points: 3, Objective: "energy", Top: 2}
	w := do(t, newTestRouter(t, false), http.MethodPost, "/api/v1/sweep", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SweepResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "area", resp.Kind)
	assert.Nil(t, resp.Y)
	require.Len(t, resp.Rankings, 2)
	assert.Equal(t, 2e5, resp.Rankings[0].X)
	assert.Equal(t, 3, resp.Summary.Count)

	w = do(t, newTestRouter(t, false), http.MethodPost, "/api/v1/sweep", models.SweepRequest{Kind: "spiral"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Code)
}

func TestSweepStream(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t, false))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/sweep/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	start, err := handlers.NewEnvelope(handlers.TypeSweepStart, models.SweepRequest{Kind: "tilt-pitch", Points: 2})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, start))

	points := 0
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(60*time.Second)))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var env handlers.Envelope
		require.NoError(t, json.Unmarshal(msg, &env))

		if env.Type == handlers.TypeSweepPoint {
			points++
			continue
		}
		require.Equal(t, handlers.TypeSweepDone, env.Type, string(env.Payload))
		var done models.SweepResponse
		require.NoError(t, json.Unmarshal(env.Payload, &done))
		assert.Equal(t, "tilt-pitch", done.Kind)
		require.NotNil(t, done.Y)
		assert.Len(t, done.Rankings, 4)
		break
	}
	assert.Equal(t, 4, points)

	// The server ends the stream with a normal close frame.
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)
}

func TestSweepStreamRejectsBadStart(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t, false))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/sweep/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg, err := handlers.NewEnvelope("sim:start", nil)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var env handlers.Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, handlers.TypeError, env.Type)
	assert.Contains(t, string(env.Payload), "INVALID_REQUEST")
}
