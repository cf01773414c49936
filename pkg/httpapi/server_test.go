package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"spareparts/pkg/catalog"
	"spareparts/pkg/httpapi"
	"spareparts/pkg/logger"
	"spareparts/pkg/query"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func str(s string) *string { return &s }

func newTestServer(t *testing.T, opts httpapi.Options) http.Handler {
	t.Helper()
	return httpapi.New(query.NewEngine(testTable(t)), nil, opts).Handler()
}

func testTable(t *testing.T) *catalog.Table {
	t.Helper()
	table, err := catalog.NewTable([][]*string{
		{str("A1"), str("Brake pad"), str("Bosch"), str("BP-1"), str("10,50")},
		{str("A2"), str("Brake disc"), str("ATE"), str("BD-2"), str("5")},
		{str("B1"), nil, str("Valeo"), nil, nil},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

type response struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Data       []struct {
		ID          string  `json:"id"`
		Description *string `json:"description"`
		Price       *string `json:"price"`
	} `json:"data"`
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestIndex(t *testing.T) {
	rec := get(t, newTestServer(t, httpapi.Options{}), "/")
	if rec.Code != http.StatusOK || rec.Body.String() != "Use REST" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestSpareParts_DefaultPage(t *testing.T) {
	resp := decode(t, get(t, newTestServer(t, httpapi.Options{}), "/spare-parts"))
	if resp.Page != 1 || resp.Limit != 40 || resp.Total != 3 || resp.TotalPages != 1 || len(resp.Data) != 3 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Data[2].Description != nil || resp.Data[2].Price != nil {
		t.Fatal("expected null fields to stay null")
	}
}

func TestSpareParts_SortAndFilter(t *testing.T) {
	h := newTestServer(t, httpapi.Options{})

	resp := decode(t, get(t, h, "/spare-parts?sort=price"))
	if got := []string{resp.Data[0].ID, resp.Data[1].ID, resp.Data[2].ID}; strings.Join(got, ",") != "B1,A2,A1" {
		t.Fatalf("unexpected price order %v", got)
	}

	resp = decode(t, get(t, h, "/spare-parts?sn=A&sort=-id"))
	if resp.Total != 2 || resp.Data[0].ID != "A2" || resp.Data[1].ID != "A1" {
		t.Fatalf("unexpected filtered response %+v", resp)
	}

	resp = decode(t, get(t, h, "/spare-parts?serialNumber=B"))
	if resp.Total != 1 || resp.Data[0].ID != "B1" {
		t.Fatalf("serialNumber alias not applied: %+v", resp)
	}

	resp = decode(t, get(t, h, "/spare-parts?name=DISC"))
	if resp.Total != 1 || resp.Data[0].ID != "A2" {
		t.Fatalf("name filter not applied: %+v", resp)
	}
}

func TestSpareParts_LenientParams(t *testing.T) {
	h := newTestServer(t, httpapi.Options{})

	resp := decode(t, get(t, h, "/spare-parts?page=abc&sort=Field3"))
	if resp.Page != 1 || resp.Data[0].ID != "A1" {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec := get(t, h, "/spare-parts?page=5")
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty data array, got %s", rec.Body.String())
	}
	resp = decode(t, rec)
	if resp.Total != 3 || resp.TotalPages != 1 || resp.Page != 5 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestSpareParts_NoCatalog(t *testing.T) {
	rec := get(t, httpapi.New(nil, nil, httpapi.Options{}).Handler(), "/spare-parts")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Not found"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, httpapi.Options{})

	rec := get(t, h, "/health")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"records":3`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}

	get(t, h, "/spare-parts")
	rec = get(t, h, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "spareparts_http_requests_total") {
		t.Fatalf("metrics missing request counter")
	}
}

func TestUnknownRoute(t *testing.T) {
	rec := get(t, newTestServer(t, httpapi.Options{}), "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, httpapi.Options{})

	rec := get(t, h, "/")
	if rec.Header().Get(httpapi.RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(httpapi.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(httpapi.RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected caller request id, got %q", got)
	}
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, httpapi.Options{CORSOrigin: "https://parts.example"})

	req := httptest.NewRequest(http.MethodOptions, "/spare-parts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://parts.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, httpapi.Options{RateLimitRPM: 1, RateLimitBurst: 1})

	if rec := get(t, h, "/spare-parts"); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	if rec := get(t, h, "/spare-parts"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
}

func forwardedGet(h http.Handler, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/spare-parts", nil)
	req.RemoteAddr = "192.0.2.1:4321"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	h := newTestServer(t, httpapi.Options{RateLimitRPM: 1, RateLimitBurst: 1})

	if rec := forwardedGet(h, "203.0.113.1"); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	if rec := forwardedGet(h, "203.0.113.2"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("spoofed X-Forwarded-For bypassed the limit, got %d", rec.Code)
	}
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	h := newTestServer(t, httpapi.Options{RateLimitRPM: 1, RateLimitBurst: 1, TrustedProxies: []string{"192.0.2.1"}})

	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		if rec := forwardedGet(h, client); rec.Code != http.StatusOK {
			t.Fatalf("client %s should have its own bucket, got %d", client, rec.Code)
		}
	}
	if rec := forwardedGet(h, "203.0.113.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("repeat client should be limited, got %d", rec.Code)
	}
}

type panickingQuerier struct{ table *catalog.Table }

func (p panickingQuerier) Run(query.Params) query.Result { panic("index out of range") }
func (p panickingQuerier) Table() *catalog.Table         { return p.table }

func TestPanicBecomesInternalError(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "ERROR"}, &buf)
	h := httpapi.New(panickingQuerier{table: testTable(t)}, log, httpapi.Options{}).Handler()

	rec := get(t, h, "/spare-parts")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"message":"Internal Server Error"`) || strings.Contains(body, "index out of range") {
		t.Fatalf("unexpected body %s", body)
	}
	if !strings.Contains(buf.String(), "index out of range") {
		t.Fatalf("panic not logged: %s", buf.String())
	}
}

func TestSpareParts_LogsResolvedQuery(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "DEBUG"}, &buf)
	h := httpapi.New(query.NewEngine(testTable(t)), log, httpapi.Options{}).Handler()

	decode(t, get(t, h, "/spare-parts?sort=-price&page=1"))
	if out := buf.String(); !strings.Contains(out, `msg="catalog query"`) || !strings.Contains(out, "sort=-price") {
		t.Fatalf("query not logged: %s", out)
	}
}
