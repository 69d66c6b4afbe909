package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"style-ai/internal/domain"
	"style-ai/internal/llm"
	"style-ai/internal/service"
)

const weekendProfileJSON = `{"styleCategories":["casual"],"occasion":"weekend","colorPreferences":[],"formalityLevel":3,"seasonality":"summer","budgetIndicator":"low"}`

func setupStyleRouter(client llm.LLMClient, cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	analyzer := service.NewStyleAnalyzer(client, service.StyleAnalyzerConfig{
		Model:             "gpt-4",
		MaxTokens:         500,
		Temperature:       0.3,
		Timeout:           time.Second,
		DefaultConfidence: 0.9,
	}, zap.NewNop())
	health := service.NewHealthService("1.0.0")
	return NewRouter(zap.NewNop(), cfg, NewStyleHandler(zap.NewNop(), analyzer), NewHealthHandler(zap.NewNop(), health))
}

func performRequest(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) domain.AnalysisResult {
	t.Helper()
	var res domain.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return res
}

func TestStyleAnalyze_Success(t *testing.T) {
	client := &llm.MockClient{Response: weekendProfileJSON}
	r := setupStyleRouter(client, RouterConfig{})

	rec := performRequest(r, http.MethodPost, "/api/v1/style/analyze", map[string]any{
		"text": "I need casual weekend clothes",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	if res.Status != "success" || res.Confidence != 0.9 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Profile == nil || res.Profile.Occasion != "weekend" || res.Profile.FormalityLevel != 3 {
		t.Fatalf("unexpected profile: %+v", res.Profile)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestStyleAnalyze_ZeroProviderConfidenceIsSerialized(t *testing.T) {
	client := &llm.MockClient{Response: `{"styleCategories":["formal"],"occasion":"gala","colorPreferences":["black"],"formalityLevel":9,"seasonality":["winter"],"budgetIndicator":"high","confidence":0}`}
	r := setupStyleRouter(client, RouterConfig{})

	rec := performRequest(r, http.MethodPost, "/api/v1/style/analyze", map[string]any{"text": "black tie gala"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if c, ok := body["confidence"]; !ok || c != float64(0) {
		t.Fatalf("expected top-level confidence 0, got %s", rec.Body.String())
	}
}

func TestStyleAnalyze_ForwardsUserContext(t *testing.T) {
	client := &llm.MockClient{Response: weekendProfileJSON}
	r := setupStyleRouter(client, RouterConfig{})

	rec := performRequest(r, http.MethodPost, "/api/v1/style/analyze", map[string]any{
		"text":        "office wear",
		"userContext": map[string]any{"size": "M"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	last := client.LastRequest()
	if len(last.Messages) != 2 || !strings.Contains(last.Messages[1].Content, `{"size":"M"}`) {
		t.Fatalf("expected user context in prompt, got %+v", last.Messages)
	}
}

func TestStyleAnalyze_EmptyTextIsValidationError(t *testing.T) {
	client := &llm.MockClient{Response: weekendProfileJSON}
	r := setupStyleRouter(client, RouterConfig{})

	rec := performRequest(r, http.MethodPost, "/api/v1/style/analyze", map[string]any{"text": "  "}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	res := decodeResult(t, rec)
	if res.Status != "error" || res.ErrorKind != domain.ErrorKindValidation {
		t.Fatalf("unexpected result: %+v", res)
	}
	if client.Calls() != 0 {
		t.Fatalf("expected provider not called, got %d", client.Calls())
	}
}

func TestStyleAnalyze_MalformedBody(t *testing.T) {
	r := setupStyleRouter(&llm.MockClient{}, RouterConfig{})

	rec := performRequest(r, http.MethodPost, "/api/v1/style/analyze", `{"text":`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if res := decodeResult(t, rec); res.ErrorKind != domain.ErrorKindValidation {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestStyleAnalyze_ProviderError(t *testing.T) {
	client := &llm.MockClient{Err: &llm.StatusError{StatusCode: http.StatusUnauthorized, Body: "invalid api key"}}
	r := setupStyleRouter(client, RouterConfig{})

	rec := performRequest(r, http.MethodPost, "/api/v1/style/analyze", map[string]any{"text": "gala"}, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	res := decodeResult(t, rec)
	if res.ErrorKind != domain.ErrorKindProvider || !strings.Contains(res.Message, "invalid api key") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestStyleAnalyze_ParseError(t *testing.T) {
	client := &llm.MockClient{Response: `{"styleCategories":["casual"]}`}
	r := setupStyleRouter(client, RouterConfig{})

	rec := performRequest(r, http.MethodPost, "/api/v1/style/analyze", map[string]any{"text": "gala"}, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	if res := decodeResult(t, rec); res.ErrorKind != domain.ErrorKindParse {
		t.Fatalf("unexpected result: %+v", res)
	}
}

type denyLimiter struct{ keys []string }

func (d *denyLimiter) Allow(_ context.Context, key string) bool {
	d.keys = append(d.keys, key)
	return false
}

func TestStyleAnalyze_RateLimited(t *testing.T) {
	client := &llm.MockClient{Response: weekendProfileJSON}
	limiter := &denyLimiter{}
	r := setupStyleRouter(client, RouterConfig{RateLimiter: limiter})

	rec := performRequest(r, http.MethodPost, "/api/v1/style/analyze", map[string]any{"text": "casual"}, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if client.Calls() != 0 {
		t.Fatalf("expected provider not called when rate limited")
	}
	if len(limiter.keys) != 1 || !strings.HasPrefix(limiter.keys[0], "ip:") {
		t.Fatalf("expected ip-based key, got %v", limiter.keys)
	}
}

func TestStyleAnalyze_RequiresTokenWhenJWTEnabled(t *testing.T) {
	jwtSvc := service.NewJWTService("secret")
	client := &llm.MockClient{Response: weekendProfileJSON}
	r := setupStyleRouter(client, RouterConfig{JWT: jwtSvc})

	rec := performRequest(r, http.MethodPost, "/api/v1/style/analyze", map[string]any{"text": "casual"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	token, err := jwtSvc.IssueAccessToken("u1", time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec = performRequest(r, http.MethodPost, "/api/v1/style/analyze", map[string]any{"text": "casual"}, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	health := service.NewHealthService("1.0.0")
	health.Register("database", nil)
	health.Register("redis", func(context.Context) error { return errors.New("down") })
	analyzer := service.NewStyleAnalyzer(&llm.MockClient{}, service.StyleAnalyzerConfig{}, zap.NewNop())
	r := NewRouter(zap.NewNop(), RouterConfig{}, NewStyleHandler(zap.NewNop(), analyzer), NewHealthHandler(zap.NewNop(), health))

	rec := performRequest(r, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "StyleAI API is running") {
		t.Fatalf("unexpected root response: %d %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(r, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with failing redis, got %d", rec.Code)
	}
	var report service.HealthReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if report.Dependencies["redis"] != service.DependencyError || report.Dependencies["database"] != service.DependencyDisabled {
		t.Fatalf("unexpected dependencies: %+v", report.Dependencies)
	}
}
