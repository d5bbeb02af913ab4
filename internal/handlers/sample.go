package handlers

import (
	"net/http"

	"github.com/TwigBush/keyguard/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Ping answers on an untagged route.
func Ping(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"pong": chi.URLParam(r, "ping")})
}

// Greet answers on a route tagged api.
func Greet(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"name": chi.URLParam(r, "name")})
}
