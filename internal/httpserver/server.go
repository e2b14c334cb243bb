// internal/httpserver/server.go
//
// HTTP server wiring for the bowling backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logging).
//   - Public endpoints: "/", "/health", POST /game/new.
//   - Token-gated game endpoints: POST /game/roll, GET and DELETE /game/{id}.
//
// Notes:
//   - Every roll goes through store.Update, so concurrent requests against
//     one game are applied one at a time.
//   - Engine errors map to 400 (bad input) or 409 (illegal in the current
//     game state).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bowling/internal/config"
	"github.com/robalobadob/bowling/internal/game"
	"github.com/robalobadob/bowling/internal/store"
)

const (
	defaultPlayer  = "guest"
	maxPlayerRunes = 32
)

// Server bundles router, game store, and token issuer.
type Server struct {
	r      *chi.Mux
	store  store.Store
	cfg    config.Config
	tokens tokenIssuer
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg config.Config) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		store:  st,
		cfg:    cfg,
		tokens: tokenIssuer{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL, now: time.Now},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                   // add X-Request-ID
	s.r.Use(chimw.RealIP)                      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))       // request-scoped logger
	s.r.Use(hlog.AccessHandler(accessLog))     // one line per request
	s.r.Use(chimw.Recoverer)                   // recover from panics
	s.r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                   // default JSON responses
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "bowling-go",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/roll", "GET /game/{id}", "DELETE /game/{id}"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "games": s.store.Len()})
	})

	s.r.Post("/game/new", s.handleNewGame)
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireToken())
		r.Post("/game/roll", s.handleRoll)
		r.Get("/game/{id}", s.handleGetGame)
		r.Delete("/game/{id}", s.handleDeleteGame)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("reqId", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Player string `json:"player"`
}
type newGameRes struct {
	GameID    string    `json:"gameId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleNewGame creates a game, stores it, and issues its token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	player := strings.TrimSpace(req.Player)
	if player == "" {
		player = defaultPlayer
	}
	if len([]rune(player)) > maxPlayerRunes {
		writeError(w, http.StatusBadRequest, "invalid_player", "player name is too long")
		return
	}

	g := game.New(player)
	if err := s.store.Save(r.Context(), g); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("gameId", g.ID).Msg("save game")
		if errors.Is(err, store.ErrFull) {
			writeError(w, http.StatusServiceUnavailable, "store_full", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}

	tok, exp, err := s.tokens.sign(g.ID, player)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("gameId", g.ID).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed", err.Error())
		return
	}
	s.setTokenCookie(w, tok, exp)
	hlog.FromRequest(r).Info().Str("gameId", g.ID).Str("player", player).Msg("game created")
	writeJSON(w, http.StatusCreated, newGameRes{GameID: g.ID, Token: tok, ExpiresAt: exp})
}

// rollReq is the payload for POST /game/roll. Pins is a pointer so a
// missing field is distinguishable from a gutter ball.
type rollReq struct {
	GameID string `json:"gameId"`
	Pins   *int   `json:"pins"`
}

// gameView is the JSON shape of a game's current state.
type gameView struct {
	GameID    string            `json:"gameId"`
	Player    string            `json:"player"`
	Frame     int               `json:"frame"`
	Score     int               `json:"score"`
	Complete  bool              `json:"complete"`
	RollsLeft int               `json:"rollsLeft"`
	Scorecard []game.FrameScore `json:"scorecard"`
}

func viewOf(g *game.Game) gameView {
	return gameView{
		GameID:    g.ID,
		Player:    g.Player,
		Frame:     g.CurrentFrameNumber(),
		Score:     g.Score(),
		Complete:  g.Complete(),
		RollsLeft: g.RollsLeft(),
		Scorecard: g.Scorecard(),
	}
}

// handleRoll applies one roll to a stored game.
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	var req rollReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if req.GameID == "" || req.Pins == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "gameId and pins are required")
		return
	}
	if !authorizedFor(r, req.GameID) {
		writeError(w, http.StatusForbidden, "forbidden", "token was not issued for this game")
		return
	}

	var view gameView
	err := s.store.Update(r.Context(), req.GameID, func(g *game.Game) error {
		if _, err := g.Roll(*req.Pins); err != nil {
			return err
		}
		view = viewOf(g)
		return nil
	})
	if err != nil {
		s.fail(w, r, req.GameID, err)
		return
	}
	if view.Complete {
		hlog.FromRequest(r).Info().Str("gameId", req.GameID).Int("score", view.Score).Msg("game complete")
	}
	writeJSON(w, http.StatusOK, view)
}

// handleGetGame returns the scorecard of a stored game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !authorizedFor(r, id) {
		writeError(w, http.StatusForbidden, "forbidden", "token was not issued for this game")
		return
	}
	var view gameView
	err := s.store.View(r.Context(), id, func(g *game.Game) error {
		view = viewOf(g)
		return nil
	})
	if err != nil {
		s.fail(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteGame discards a stored game.
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !authorizedFor(r, id) {
		writeError(w, http.StatusForbidden, "forbidden", "token was not issued for this game")
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ------------------------------ errors -------------------------------------

// errorStatus maps store and engine errors to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrValidation):
		return http.StatusBadRequest, "invalid_roll"
	case errors.Is(err, game.ErrGameOver):
		return http.StatusConflict, "game_over"
	case errors.Is(err, game.ErrState):
		return http.StatusConflict, "illegal_roll"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, gameID string, err error) {
	status, code := errorStatus(err)
	ev := hlog.FromRequest(r).Debug()
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Warn()
	}
	ev.Err(err).Str("gameId", gameID).Int("status", status).Msg(code)
	writeError(w, status, code, err.Error())
}

type errorRes struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorRes{Error: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
