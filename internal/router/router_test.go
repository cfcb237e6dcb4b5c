package router_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deppfellow/tat-relay/internal/config"
	"github.com/deppfellow/tat-relay/internal/handler"
	"github.com/deppfellow/tat-relay/internal/repository"
	"github.com/deppfellow/tat-relay/internal/router"
	"github.com/deppfellow/tat-relay/internal/server"
	"github.com/deppfellow/tat-relay/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const record = `{"id":"rec123","createdTime":"2024-01-01T00:00:00.000Z","fields":{"Status":"Complete"}}`

type upstream struct {
	srv   *httptest.Server
	calls atomic.Int32

	status int
	body   string

	lastMethod string
	lastPath   string
	lastAuth   string
	lastBody   string
}

func newUpstream(t *testing.T, status int, body string) *upstream {
	t.Helper()

	u := &upstream{status: status, body: body}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		u.lastMethod = r.Method
		u.lastPath = r.URL.Path
		u.lastAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		u.lastBody = string(b)

		w.WriteHeader(u.status)
		_, _ = w.Write([]byte(u.body))
	}))
	t.Cleanup(u.srv.Close)

	return u
}

func testConfig(baseURL, apiKey string) *config.Config {
	obs := config.DefaultObservabilityConfig()
	obs.Environment = "test"

	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  config.DefaultReadTimeout,
			WriteTimeout: config.DefaultWriteTimeout,
			IdleTimeout:  config.DefaultIdleTimeout,
		},
		Airtable: config.AirtableConfig{
			APIKey:  apiKey,
			BaseURL: baseURL,
			BaseID:  "appBase",
			TableID: "tblTable",
		},
		Observability: obs,
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()

	srv, err := server.New(cfg, nil, nil)
	require.NoError(t, err)

	services, err := service.NewService(srv, repository.NewRepositories(srv))
	require.NoError(t, err)

	return router.NewRouter(srv, handler.NewHandlers(srv, services))
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPreflight(t *testing.T) {
	up := newUpstream(t, http.StatusOK, record)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	rec := do(e, http.MethodOptions, "/anything/here", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Zero(t, up.calls.Load())
}

func TestOtherMethodsAreRejected(t *testing.T) {
	up := newUpstream(t, http.StatusOK, record)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			rec := do(e, method, "/", `{"taskId":"rec123","status":"Complete"}`)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
			assertJSONContentType(t, rec)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	rec := do(e, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "health endpoint is off by default")

	assert.Zero(t, up.calls.Load())
}

func TestValidationErrors(t *testing.T) {
	up := newUpstream(t, http.StatusOK, record)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing status", `{"taskId":"rec123"}`, `{"error":"Missing taskId or status"}`},
		{"missing taskId", `{"status":"Complete"}`, `{"error":"Missing taskId or status"}`},
		{"empty taskId", `{"taskId":"","status":"Complete"}`, `{"error":"Missing taskId or status"}`},
		{"empty object", `{}`, `{"error":"Missing taskId or status"}`},
		{"missing wins over invalid", `{"status":"Done"}`, `{"error":"Missing taskId or status"}`},
		{"unknown status", `{"taskId":"rec123","status":"Done"}`, `{"error":"Invalid status value"}`},
		{"wrong case", `{"taskId":"rec123","status":"complete"}`, `{"error":"Invalid status value"}`},
		{"numeric status", `{"taskId":"rec123","status":5}`, `{"error":"Invalid status value"}`},
		{"boolean status", `{"taskId":"rec123","status":true}`, `{"error":"Invalid status value"}`},
		{"object status", `{"taskId":"rec123","status":{"name":"Complete"}}`, `{"error":"Invalid status value"}`},
		{"zero status", `{"taskId":"rec123","status":0}`, `{"error":"Missing taskId or status"}`},
		{"null taskId", `{"taskId":null,"status":"Complete"}`, `{"error":"Missing taskId or status"}`},
		{"false taskId", `{"taskId":false,"status":"Complete"}`, `{"error":"Missing taskId or status"}`},
		{"array body", `[1,2]`, `{"error":"Missing taskId or status"}`},
		{"null body", `null`, `{"error":"Missing taskId or status"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tc.want, rec.Body.String())
			assertJSONContentType(t, rec)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	assert.Zero(t, up.calls.Load())
}

func TestMalformedBody(t *testing.T) {
	up := newUpstream(t, http.StatusOK, record)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	cases := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"truncated", `{"taskId":`},
		{"trailing content", `{"taskId":"rec1","status":"Complete"} trailing`},
		{"two values", `{"taskId":"rec1","status":"Complete"}{"taskId":"rec2","status":"Blocked"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/", tc.body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid JSON in request body"}`, rec.Body.String())
			assertJSONContentType(t, rec)
		})
	}

	assert.Zero(t, up.calls.Load())
}

func TestMissingAPIKey(t *testing.T) {
	up := newUpstream(t, http.StatusOK, record)
	e := newTestRouter(t, testConfig(up.srv.URL, ""))

	rec := do(e, http.MethodPost, "/", `{"taskId":"rec123","status":"Complete"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Airtable API key not configured"}`, rec.Body.String())
	assert.Zero(t, up.calls.Load())

	rec = do(e, http.MethodPost, "/", `{"taskId":"rec123","status":"Done"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "validation runs before the credential check")
}

func TestUpdateSuccess(t *testing.T) {
	up := newUpstream(t, http.StatusOK, record)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	rec := do(e, http.MethodPost, "/any/path", `{"taskId":"rec123","status":"Complete"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"success":true,"message":"Task rec123 updated to Complete","task":`+record+`}`,
		rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assertJSONContentType(t, rec)

	assert.EqualValues(t, 1, up.calls.Load())
	assert.Equal(t, http.MethodPatch, up.lastMethod)
	assert.Equal(t, "/appBase/tblTable/rec123", up.lastPath)
	assert.Equal(t, "Bearer pat-test", up.lastAuth)
	assert.JSONEq(t, `{"fields":{"Status":"Complete"}}`, up.lastBody)
}

func TestUpdateWithNumericTaskID(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `{"id":"42"}`)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	rec := do(e, http.MethodPost, "/", `{"taskId":42,"status":"Blocked"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/appBase/tblTable/42", up.lastPath)
	assert.Contains(t, rec.Body.String(), `"message":"Task 42 updated to Blocked"`)
}

func TestUpdateIsIdempotent(t *testing.T) {
	up := newUpstream(t, http.StatusOK, record)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	first := do(e, http.MethodPost, "/", `{"taskId":"rec123","status":"Complete"}`)
	second := do(e, http.MethodPost, "/", `{"taskId":"rec123","status":"Complete"}`)

	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.EqualValues(t, 2, up.calls.Load())
}

func TestUpstreamError(t *testing.T) {
	upstreamBody := `{"error":{"type":"ROW_DOES_NOT_EXIST","message":"Record not found"}}`
	up := newUpstream(t, http.StatusNotFound, upstreamBody)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	rec := do(e, http.MethodPost, "/", `{"taskId":"recMissing","status":"Blocked"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t,
		`{"error":"Airtable API error","details":`+jsonString(upstreamBody)+`}`,
		rec.Body.String())
	assertJSONContentType(t, rec)
}

func TestUpstreamMalformedResponse(t *testing.T) {
	up := newUpstream(t, http.StatusOK, `<html>bad gateway</html>`)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	rec := do(e, http.MethodPost, "/", `{"taskId":"rec123","status":"In Progress"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON in Airtable response"}`, rec.Body.String())
}

func TestUpstreamUnreachable(t *testing.T) {
	up := newUpstream(t, http.StatusOK, record)
	baseURL := up.srv.URL
	up.srv.Close()

	e := newTestRouter(t, testConfig(baseURL, "pat-test"))

	rec := do(e, http.MethodPost, "/", `{"taskId":"rec123","status":"Not Started"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to reach Airtable API"}`, rec.Body.String())
}

func TestRequestID(t *testing.T) {
	up := newUpstream(t, http.StatusOK, record)
	e := newTestRouter(t, testConfig(up.srv.URL, "pat-test"))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = do(e, http.MethodOptions, "/", "")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36, "generated uuid")

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 500))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36, "oversized id is replaced")
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		up := newUpstream(t, http.StatusOK, `{"records":[]}`)
		cfg := testConfig(up.srv.URL, "pat-test")
		cfg.Observability.HealthChecks.Enabled = true
		e := newTestRouter(t, cfg)

		rec := do(e, http.MethodGet, "/status", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
		assert.Equal(t, http.MethodGet, up.lastMethod)
		assert.Equal(t, "/appBase/tblTable", up.lastPath)
	})

	t.Run("unhealthy", func(t *testing.T) {
		up := newUpstream(t, http.StatusUnauthorized, `{"error":"AUTHENTICATION_REQUIRED"}`)
		cfg := testConfig(up.srv.URL, "pat-test")
		cfg.Observability.HealthChecks.Enabled = true
		cfg.Observability.HealthChecks.Timeout = time.Second
		e := newTestRouter(t, cfg)

		rec := do(e, http.MethodGet, "/status", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	})

	t.Run("no credential", func(t *testing.T) {
		up := newUpstream(t, http.StatusOK, `{"records":[]}`)
		cfg := testConfig(up.srv.URL, "")
		cfg.Observability.HealthChecks.Enabled = true
		e := newTestRouter(t, cfg)

		rec := do(e, http.MethodGet, "/status", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "Airtable API key not configured")
		assert.Zero(t, up.calls.Load())
	})

	t.Run("relay still served", func(t *testing.T) {
		up := newUpstream(t, http.StatusOK, record)
		cfg := testConfig(up.srv.URL, "pat-test")
		cfg.Observability.HealthChecks.Enabled = true
		e := newTestRouter(t, cfg)

		assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/status", `{"taskId":"rec123","status":"Complete"}`).Code)
		assert.Equal(t, http.StatusMethodNotAllowed, do(e, http.MethodGet, "/other", "").Code)
	})
}

func assertJSONContentType(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))
}

func jsonString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
