package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/segni49/plugpost/internal/config"
	"github.com/segni49/plugpost/internal/domain"
	"github.com/segni49/plugpost/internal/engine"
	"github.com/segni49/plugpost/internal/handler"
	"github.com/segni49/plugpost/internal/router"
	"github.com/segni49/plugpost/internal/service"
	"github.com/segni49/plugpost/internal/store"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	scoring := config.DefaultScoring()
	mem := store.NewMemory(scoring)
	for i := 1; i <= 10; i++ {
		mem.PutContent(domain.ContentProfile{
			PostID:      fmt.Sprintf("p%d", i),
			CategoryID:  fmt.Sprintf("c%d", i%3+1),
			AuthorID:    fmt.Sprintf("a%d", i%4+1),
			PublishedAt: time.Now().Add(-time.Duration(i) * time.Hour),
			ViewCount:   int64(i * 10),
		}, fmt.Sprintf("post %d", i))
	}
	eng := engine.New(mem, mem, mem, mem, scoring, zerolog.Nop())
	svc := service.New(eng, mem, scoring.EnrichConcurrency, zerolog.Nop())
	srv := httptest.NewServer(router.Setup(handler.NewHandler(svc)))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, userID, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRecommendationsEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/recommendations?limit=5", "u1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body handler.RecommendationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.UserID != "u1" {
		t.Errorf("expected user_id u1, got %q", body.UserID)
	}
	if len(body.Recommendations) != 5 || body.Metadata.TotalCount != 5 {
		t.Errorf("expected 5 recommendations, got %d (meta %d)", len(body.Recommendations), body.Metadata.TotalCount)
	}
	if body.Metadata.BatchID == "" {
		t.Error("metadata batch_id must be set")
	}
}

func TestRecommendationsRequireUser(t *testing.T) {
	srv := testServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/recommendations", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without X-User-ID, got %d", resp.StatusCode)
	}
}

func TestRecommendationsRejectBadParams(t *testing.T) {
	srv := testServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/recommendations?limit=0", "u1", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("limit=0 must be rejected, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, srv.URL+"/recommendations?types=astrology", "u1", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown strategy must be rejected, got %d", resp.StatusCode)
	}
	var errBody handler.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody.Error != "invalid_parameter" {
		t.Errorf("expected invalid_parameter code, got %q", errBody.Error)
	}
}

func TestTrackInteractionEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/interactions", "u1", `{"post_id":"p1","action":"like"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, srv.URL+"/interactions", "u1", `{"post_id":"ghost","action":"like"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown post must map to 404, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, srv.URL+"/interactions", "u1", `{"post_id":"p1","action":"teleport"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown action must map to 400, got %d", resp.StatusCode)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/feedback", "u1", `{"post_id":"p2","feedback":"positive","reason":"more like this"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, srv.URL+"/feedback", "u1", `{"post_id":"p2","feedback":"meh"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown feedback value must map to 400, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, srv.URL+"/feedback", "u1", `{"feedback":"positive"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing post_id must map to 400, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/health", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.StatusCode)
	}
}
