// internal/httpserver/token.go
//
// Game tokens.
// Creating a game hands the caller an HS256 JWT bound to that game ID; every
// later request against the game must present it, either as
// "Authorization: Bearer <token>" or in the bowling_token cookie.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenCookieName = "bowling_token"

// gameClaims are the claims carried by a game token.
type gameClaims struct {
	GameID string `json:"gid"`
	Player string `json:"player"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// sign creates a token for gameID that expires after the issuer's TTL.
func (t tokenIssuer) sign(gameID, player string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, gameClaims{
		GameID: gameID,
		Player: player,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := tok.SignedString(t.secret)
	return ss, exp, err
}

// parse verifies the signature and expiry of a token string.
func (t tokenIssuer) parse(s string) (*gameClaims, error) {
	claims := &gameClaims{}
	tok, err := jwt.ParseWithClaims(s, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.GameID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ctxClaimsKey is the context key type for storing gameClaims.
type ctxClaimsKey struct{}

// requireToken rejects requests without a valid game token and stores the
// claims in the request context.
func (s *Server) requireToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerOrCookie(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing game token")
				return
			}
			claims, err := s.tokens.parse(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token", err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxClaimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authorizedFor reports whether the request's token was issued for gameID.
func authorizedFor(r *http.Request, gameID string) bool {
	c, _ := r.Context().Value(ctxClaimsKey{}).(*gameClaims)
	return c != nil && c.GameID == gameID
}

// setTokenCookie writes the game token cookie.
func (s *Server) setTokenCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.SecureCookies {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or the token cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(tokenCookieName); err == nil {
		return c.Value
	}
	return ""
}
