package service

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trade_risk/internal/models"
	calculator "trade_risk/internal/modules/calculator/service"
	metrics "trade_risk/internal/modules/metrics/service"
)

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	calc, err := calculator.NewService(calculator.DefaultSettings(), nil, nil, nil, nil)
	require.NoError(t, err)

	m := metrics.New()
	h, err := NewHandler(calc, nil, m, opts)
	require.NoError(t, err)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, m
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return b
}

const positionBody = `{"account_size":10000,"risk_percent":1,"entry_price":50,"technical_stop":48,"target_price":56}`

func TestAPI_PositionSize(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp := postJSON(t, srv.URL+"/api/v1/position-size", positionBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	var res models.PositionSizeResult
	require.NoError(t, sonic.Unmarshal(readBody(t, resp), &res))
	assert.Equal(t, int64(50), res.PositionSize)
	assert.Equal(t, "100", res.RiskAmount.String())
	assert.Equal(t, "3", res.RiskRewardRatio.String())
	assert.Len(t, res.ExitPlan.Tiers, 3)
}

func TestAPI_PositionSize_Preset(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	body := strings.TrimSuffix(positionBody, "}") + `,"preset":"front"}`
	resp := postJSON(t, srv.URL+"/api/v1/position-size", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res models.PositionSizeResult
	require.NoError(t, sonic.Unmarshal(readBody(t, resp), &res))
	assert.Equal(t, "front", res.ExitPlan.Policy)
	assert.Equal(t, int64(25), res.ExitPlan.Tiers[0].Quantity)
}

func TestAPI_Standard(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp := postJSON(t, srv.URL+"/api/v1/standard",
		`{"account_size":"10000","risk_percent":"2","share_count":100,"entry_price":"20","target_price":"24","stop_price":"19"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res models.StandardResult
	require.NoError(t, sonic.Unmarshal(readBody(t, resp), &res))
	assert.Equal(t, "100", res.ActualRisk.String())
	assert.Equal(t, "4", res.RiskRewardRatio.String())
	assert.False(t, res.OverBudget)
}

func TestAPI_InvalidInput(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp := postJSON(t, srv.URL+"/api/v1/position-size",
		`{"account_size":10000,"risk_percent":1,"entry_price":50,"technical_stop":50,"target_price":56}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body errorBody
	require.NoError(t, sonic.Unmarshal(readBody(t, resp), &body))
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "technical_stop", body.Fields[0].Field)
	assert.Contains(t, body.Error, "invalid input")
}

func TestAPI_MalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	for _, body := range []string{`{"account_size":`, ``, `{"share_count":"abc"}`} {
		resp := postJSON(t, srv.URL+"/api/v1/standard", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/api/v1/standard")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAPI_Catalogs(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/api/v1/currencies")
	require.NoError(t, err)
	defer resp.Body.Close()
	var cur struct {
		Default    string            `json:"default"`
		Currencies []models.Currency `json:"currencies"`
	}
	require.NoError(t, sonic.Unmarshal(readBody(t, resp), &cur))
	assert.Equal(t, "USD", cur.Default)
	assert.Len(t, cur.Currencies, 4)

	resp2, err := http.Get(srv.URL + "/api/v1/presets")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var presets []presetView
	require.NoError(t, sonic.Unmarshal(readBody(t, resp2), &presets))
	require.Len(t, presets, 4)
	assert.Equal(t, "thirds", presets[0].Name)
	assert.True(t, presets[0].Default)
	assert.False(t, presets[1].Default)
}

func TestAPI_XLSX(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	body := strings.TrimSuffix(positionBody, "}") + `,"currency":"EUR"}`
	resp := postJSON(t, srv.URL+"/api/v1/position-size/xlsx", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxMIME, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "position-size.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(readBody(t, resp)))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "EUR €", v)

	resp = postJSON(t, srv.URL+"/api/v1/standard/xlsx", `{"account_size":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPage_Index(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/?currency=sek")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := string(readBody(t, resp))
	assert.Contains(t, page, "Standard Risk Calculator")
	assert.Contains(t, page, "Position Size Calculator")
	assert.Contains(t, page, `class="active">🇸🇪 SEK`)
	assert.Contains(t, page, "Never risk more than 2% of your account on a single trade")

	resp404, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp404.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp404.StatusCode)
}

func TestPage_Calculate(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.PostForm(srv.URL+"/calculate", url.Values{
		"mode":           {"position_size"},
		"currency":       {"USD"},
		"account_size":   {"10 000"},
		"risk_percent":   {"1"},
		"entry_price":    {"50"},
		"technical_stop": {"48"},
		"target_price":   {"56"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := string(readBody(t, resp))
	assert.Contains(t, page, "Trade Analysis: Position Size")
	assert.Contains(t, page, "50 shares")
	assert.Contains(t, page, "Sell remaining position")
	assert.Contains(t, page, "Risk-to-Reward Matrix")
}

func TestPage_CalculateInvalid(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	resp, err := http.PostForm(srv.URL+"/calculate", url.Values{
		"mode":         {"standard"},
		"account_size": {"abc"},
		"share_count":  {"4.5"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	page := string(readBody(t, resp))
	assert.Contains(t, page, "Please check the highlighted fields.")
	assert.Contains(t, page, "account_size")
	assert.Contains(t, page, "share_count")
}

func TestRateLimit(t *testing.T) {
	srv, m := newTestServer(t, Options{RateRPS: 0.001, RateBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/api/v1/currencies")
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
		_ = resp.Body.Close()
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "riskcalc_http_rate_limited_total 1")
}

func TestIPLimiter_Sweep(t *testing.T) {
	l := newIPLimiter(1, 1)
	now := time.Now()
	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))

	later := now.Add(limiterIdleTTL + limiterSweep + time.Second)
	assert.True(t, l.allow("b", later))
	l.mu.Lock()
	_, stillThere := l.visitors["a"]
	l.mu.Unlock()
	assert.False(t, stillThere)

	assert.True(t, newIPLimiter(0, 0).allow("x", now))
}

func TestRequestID_Propagated(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/presets", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(requestIDHeader))
}

func TestWebsocket_RoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	exchange := func(msg string) map[string]interface{} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var out map[string]interface{}
		require.NoError(t, sonic.Unmarshal(data, &out))
		return out
	}

	out := exchange(`{"mode":"position_size","input":` + positionBody + `}`)
	assert.Equal(t, "position_size", out["mode"])
	result, ok := out["result"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 50, result["position_size"])

	out = exchange(`{"mode":"standard","input":{"account_size":10000}}`)
	assert.Contains(t, out["error"], "invalid input")
	assert.NotEmpty(t, out["fields"])

	out = exchange(`{"mode":"nope","input":{}}`)
	assert.Equal(t, "unknown mode nope", out["error"])

	out = exchange(`not json`)
	assert.Contains(t, out["error"], "malformed JSON")
}
