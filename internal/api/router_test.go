package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/socialgraph/social-api/internal/core/service"
	"github.com/socialgraph/social-api/internal/infrastructure/db/memory"
	"github.com/socialgraph/social-api/internal/pkg/validation"
)

func newTestServer(t *testing.T, mode service.FriendshipMode) *echo.Echo {
	t.Helper()
	users := memory.NewUserRepository()
	thoughts := memory.NewThoughtRepository()
	v := validation.New()
	log := zerolog.Nop()

	return NewRouter(Dependencies{
		Users:     service.NewUserService(users, thoughts, v, nil, log),
		Friends:   service.NewFriendService(users, mode, nil, log),
		Thoughts:  service.NewThoughtService(users, thoughts, nil, v, nil, log),
		Validator: v,
		Logger:    log,
		Registry:  prometheus.NewRegistry(),
	})
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: invalid json %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, resp
}

func TestRouter_AliceScenario(t *testing.T) {
	e := newTestServer(t, service.FriendshipDirectional)

	code, alice := do(t, e, http.MethodPost, "/api/users", `{"username":"alice","email":"a@x.com"}`)
	if code != http.StatusOK {
		t.Fatalf("create user: %d %v", code, alice)
	}
	u1 := alice["id"].(string)

	code, author := do(t, e, http.MethodPost, "/api/thoughts", `{"userId":"`+u1+`","text":"hello"}`)
	if code != http.StatusOK {
		t.Fatalf("create thought: %d %v", code, author)
	}
	links := author["thoughts"].([]any)
	if len(links) != 1 {
		t.Fatalf("expected thoughts:[t1], got %v", links)
	}
	t1 := links[0].(string)

	code, thought := do(t, e, http.MethodPost, "/api/thoughts/"+t1+"/reactions", `{"body":"nice!","username":"bob"}`)
	if code != http.StatusOK {
		t.Fatalf("add reaction: %d %v", code, thought)
	}
	if n := len(thought["reactions"].([]any)); n != 1 {
		t.Fatalf("expected 1 reaction, got %d", n)
	}

	// Removing an unknown reaction is not a 404.
	code, thought = do(t, e, http.MethodDelete, "/api/thoughts/"+t1+"/reactions/unknown", "")
	if code != http.StatusOK || thought["reactionCount"] != float64(1) {
		t.Fatalf("remove unknown reaction: %d %v", code, thought)
	}

	code, body := do(t, e, http.MethodDelete, "/api/users/"+u1, "")
	if code != http.StatusOK || body["message"] != "User and associated thoughts deleted!" {
		t.Fatalf("delete user: %d %v", code, body)
	}

	if code, _ := do(t, e, http.MethodGet, "/api/thoughts/"+t1, ""); code != http.StatusNotFound {
		t.Errorf("expected 404 for cascaded thought, got %d", code)
	}
}

func TestRouter_StatusMapping(t *testing.T) {
	e := newTestServer(t, service.FriendshipDirectional)

	code, alice := do(t, e, http.MethodPost, "/api/users", `{"username":"alice","email":"a@x.com"}`)
	if code != http.StatusOK {
		t.Fatalf("create user: %d", code)
	}
	u1 := alice["id"].(string)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"duplicate username", http.MethodPost, "/api/users", `{"username":"alice","email":"b@x.com"}`, http.StatusConflict},
		{"bad email", http.MethodPost, "/api/users", `{"username":"bob","email":"nope"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/users", `{"username":`, http.StatusBadRequest},
		{"unknown user", http.MethodGet, "/api/users/000000000000000000000000", "", http.StatusNotFound},
		{"malformed user id", http.MethodGet, "/api/users/xyz", "", http.StatusNotFound},
		{"missing author", http.MethodPost, "/api/thoughts", `{"userId":"000000000000000000000000","text":"hi"}`, http.StatusNotFound},
		{"unknown thought", http.MethodPut, "/api/thoughts/000000000000000000000000", `{"text":"x"}`, http.StatusNotFound},
		{"bad friend id", http.MethodPost, "/api/users/" + u1 + "/friends/xyz", "", http.StatusBadRequest},
		{"friend of unknown user", http.MethodPost, "/api/users/000000000000000000000000/friends/" + u1, "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, e, tc.method, tc.path, tc.body)
			if code != tc.want {
				t.Errorf("expected %d, got %d (%v)", tc.want, code, body)
			}
		})
	}

	// No thought may survive the missing-author create.
	req := httptest.NewRequest(http.MethodGet, "/api/thoughts", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected no thoughts, got %s", rec.Body.String())
	}
}

func TestRouter_MutualFriends(t *testing.T) {
	e := newTestServer(t, service.FriendshipMutual)

	_, a := do(t, e, http.MethodPost, "/api/users", `{"username":"alice","email":"a@x.com"}`)
	_, b := do(t, e, http.MethodPost, "/api/users", `{"username":"bob","email":"b@x.com"}`)
	aID, bID := a["id"].(string), b["id"].(string)

	code, body := do(t, e, http.MethodPost, "/api/users/"+aID+"/friends/"+bID, "")
	if code != http.StatusOK || body["friendCount"] != float64(1) {
		t.Fatalf("add friend: %d %v", code, body)
	}

	_, bob := do(t, e, http.MethodGet, "/api/users/"+bID, "")
	friends := bob["friends"].([]any)
	if len(friends) != 1 || friends[0].(map[string]any)["username"] != "alice" {
		t.Errorf("expected bob's expanded friends [alice], got %v", friends)
	}
}

func TestRouter_OperationalRoutes(t *testing.T) {
	e := newTestServer(t, service.FriendshipDirectional)

	for _, path := range []string{"/health", "/health/ready", "/metrics", "/swagger/doc.json"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
