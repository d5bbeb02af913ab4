package guard

import (
	"net/http"

	"github.com/TwigBush/keyguard/internal/httpx"
	"github.com/TwigBush/keyguard/internal/route"
)

// Middleware evaluates every request against the route tags found in its
// context. Denied requests get a 401 and never reach next.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := g.Evaluate(r, route.TagsFrom(r.Context()))
		if !v.Allowed() {
			httpx.WriteError(w, http.StatusUnauthorized, v.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}
