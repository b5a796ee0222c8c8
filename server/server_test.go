package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/orders"
	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/server/endpoint"
	"github.com/kbukum/stagekit/server/middleware"
)

type envelope struct {
	Data  endpoint.RunView `json:"data"`
	Error struct {
		Code      string `json:"code"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
}

func newTestServer(t *testing.T, latency time.Duration) (*Server, *orders.Store) {
	t.Helper()
	store := orders.NewFixtureStore()
	svc := orders.NewServices(store, orders.WithLatency(latency), orders.WithLogger(logger.Nop()))
	p, err := orders.NewPipeline(svc, pipeline.WithRunLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}

	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0

	cfg.CORS.Enabled = true
	cfg.CORS.AllowedOrigins = []string{"http://shop.example"}

	s := New(cfg, logger.Nop())
	if err := s.ApplyMiddleware(); err != nil {
		t.Fatal(err)
	}
	s.RegisterHealth("stagekit", nil)
	endpoint.NewRuns(p, pipeline.NewTracker(time.Minute), time.Second).Register(s.GinEngine())
	return s, store
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func waitForState(t *testing.T, s *Server, id string) endpoint.RunView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, env := do(t, s, http.MethodGet, "/runs/"+id, "")
		if env.Data.State.IsTerminal() {
			return env.Data
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s did not settle", id)
	return endpoint.RunView{}
}

func TestCreateOrder_Completed(t *testing.T) {
	s, store := newTestServer(t, 0)

	rec, env := do(t, s, http.MethodPost, "/orders", `{"user_id":1}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Data.State != pipeline.Completed || env.Data.StagesRun != 3 {
		t.Errorf("unexpected run view %+v", env.Data)
	}
	if rec.Header().Get(endpoint.HeaderRunID) != env.Data.RunID {
		t.Error("expected run ID header to match body")
	}
	if rec.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("expected request ID header")
	}
	if len(store.Orders()) != 1 {
		t.Errorf("expected one placed order, got %d", len(store.Orders()))
	}
}

func TestCreateOrder_Errors(t *testing.T) {
	s, _ := newTestServer(t, 0)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"unknown user", `{"user_id":7}`, http.StatusNotFound, "NOT_FOUND"},
		{"missing user", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad json", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad timeout", `{"user_id":1,"timeout":"soon"}`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, s, http.MethodPost, "/orders", tt.body)
			if rec.Code != tt.status || env.Error.Code != tt.code {
				t.Errorf("expected %d %s, got %d %s", tt.status, tt.code, rec.Code, env.Error.Code)
			}
		})
	}
}

func TestCreateOrder_Timeout(t *testing.T) {
	s, store := newTestServer(t, 50*time.Millisecond)

	rec, env := do(t, s, http.MethodPost, "/orders", `{"user_id":1,"timeout":"20ms"}`)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	if env.Error.Code != "TIMEOUT" || !env.Error.Retryable {
		t.Errorf("expected retryable TIMEOUT, got %+v", env.Error)
	}
	time.Sleep(100 * time.Millisecond)
	if len(store.Orders()) != 0 {
		t.Error("timed out run must not place an order")
	}
}

func TestCreateOrderAsync_Completes(t *testing.T) {
	s, _ := newTestServer(t, 5*time.Millisecond)

	rec, env := do(t, s, http.MethodPost, "/orders/async", `{"user_id":1}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if env.Data.RunID == "" {
		t.Fatal("expected run ID")
	}

	final := waitForState(t, s, env.Data.RunID)
	if final.State != pipeline.Completed || final.Result == nil {
		t.Errorf("expected completed with result, got %+v", final)
	}
}

func TestCancelRun(t *testing.T) {
	s, store := newTestServer(t, 40*time.Millisecond)

	_, env := do(t, s, http.MethodPost, "/orders/async", `{"user_id":1,"timeout":"5s"}`)
	id := env.Data.RunID

	rec, _ := do(t, s, http.MethodDelete, "/runs/"+id, "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	final := waitForState(t, s, id)
	if final.State != pipeline.Cancelled {
		t.Errorf("expected cancelled, got %s", final.State)
	}
	if final.Error == nil || final.Error.Code != "CANCELLED" {
		t.Errorf("expected CANCELLED error body, got %+v", final.Error)
	}
	if len(store.Orders()) != 0 {
		t.Error("cancelled run must not place an order")
	}
}

func TestRuns_NotFound(t *testing.T) {
	s, _ := newTestServer(t, 0)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec, env := do(t, s, method, "/runs/nope", "")
		if rec.Code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
			t.Errorf("%s: expected 404 NOT_FOUND, got %d %s", method, rec.Code, env.Error.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	req.Header.Set("Origin", "http://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://shop.example" {
		t.Errorf("unexpected allowed origin %q", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" || body["service"] != "stagekit" {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestServer_Lifecycle(t *testing.T) {
	s, _ := newTestServer(t, 0)
	if h := s.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h := s.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}

	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 over the network, got %d", resp.StatusCode)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("stop: %v", err)
	}
}
