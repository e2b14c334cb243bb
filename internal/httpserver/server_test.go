package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/bowling/internal/config"
	"github.com/robalobadob/bowling/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		LogLevel:       "disabled",
		ClientOrigin:   "http://localhost:5173",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		RequestTimeout: 5 * time.Second,
		MaxGames:       100,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := testConfig()
	return New(store.NewMemoryStore(cfg.MaxGames), cfg)
}

func do(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func newGame(t *testing.T, s *Server, player string) newGameRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/game/new", "", `{"player":"`+player+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /game/new status = %d, body %s", rec.Code, rec.Body)
	}
	res := decode[newGameRes](t, rec)
	if res.GameID == "" || res.Token == "" {
		t.Fatalf("new game response = %+v", res)
	}
	return res
}

func roll(t *testing.T, s *Server, g newGameRes, pins int) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"gameId": g.GameID, "pins": pins})
	return do(t, s, http.MethodPost, "/game/roll", g.Token, string(body))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestNewGameSetsCookie(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/game/new", "", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == tokenCookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected token cookie")
	}
}

func TestNewGameRejectsLongPlayer(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/game/new", "", `{"player":"`+strings.Repeat("x", 40)+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPerfectGameOverHTTP(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "alice")
	var view gameView
	for i := 0; i < 12; i++ {
		rec := roll(t, s, g, 10)
		if rec.Code != http.StatusOK {
			t.Fatalf("roll %d status = %d, body %s", i+1, rec.Code, rec.Body)
		}
		view = decode[gameView](t, rec)
	}
	if view.Score != 300 || !view.Complete || view.Frame != 10 {
		t.Fatalf("view = %+v", view)
	}
	if len(view.Scorecard) != 10 || view.Scorecard[9].Cumulative != 300 {
		t.Fatalf("scorecard = %+v", view.Scorecard)
	}

	rec := roll(t, s, g, 0)
	if rec.Code != http.StatusConflict {
		t.Fatalf("roll after game over status = %d, want 409", rec.Code)
	}
	if res := decode[errorRes](t, rec); res.Error != "game_over" {
		t.Fatalf("error = %q, want game_over", res.Error)
	}

	rec = do(t, s, http.MethodGet, "/game/"+g.GameID, g.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	if got := decode[gameView](t, rec); got.Score != 300 || got.Player != "alice" {
		t.Fatalf("GET view = %+v", got)
	}
}

func TestRollErrors(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "bob")

	if rec := roll(t, s, g, 11); rec.Code != http.StatusBadRequest {
		t.Fatalf("Roll(11) status = %d, want 400", rec.Code)
	}
	if rec := roll(t, s, g, 6); rec.Code != http.StatusOK {
		t.Fatalf("Roll(6) status = %d", rec.Code)
	}
	rec := roll(t, s, g, 5)
	if rec.Code != http.StatusConflict {
		t.Fatalf("Roll(5) after 6 status = %d, want 409", rec.Code)
	}
	if res := decode[errorRes](t, rec); res.Error != "illegal_roll" {
		t.Fatalf("error = %q, want illegal_roll", res.Error)
	}

	missing := do(t, s, http.MethodPost, "/game/roll", g.Token, `{"gameId":"`+g.GameID+`"}`)
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("missing pins status = %d, want 400", missing.Code)
	}
	bad := do(t, s, http.MethodPost, "/game/roll", g.Token, `{"gameId":"`+g.GameID+`","pins":1.5}`)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("fractional pins status = %d, want 400", bad.Code)
	}
}

func TestTokenRequired(t *testing.T) {
	s := newTestServer(t)
	a := newGame(t, s, "alice")
	b := newGame(t, s, "bob")

	if rec := do(t, s, http.MethodGet, "/game/"+a.GameID, "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/game/"+a.GameID, "garbage", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/game/"+a.GameID, b.Token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("other game's token status = %d, want 403", rec.Code)
	}
	cross := newGameRes{GameID: a.GameID, Token: b.Token}
	if rec := roll(t, s, cross, 3); rec.Code != http.StatusForbidden {
		t.Fatalf("roll with other game's token status = %d, want 403", rec.Code)
	}
}

func TestExpiredToken(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "carol")
	s.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if rec := do(t, s, http.MethodGet, "/game/"+g.GameID, g.Token, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token status = %d, want 401", rec.Code)
	}
}

func TestDeleteGame(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "dave")
	if rec := do(t, s, http.MethodDelete, "/game/"+g.GameID, g.Token, ""); rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/game/"+g.GameID, g.Token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want 404", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if res := decode[errorRes](t, rec); res.Error != "not_found" {
		t.Fatalf("error = %q", res.Error)
	}
}
