package mw

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/TwigBush/keyguard/internal/httpx"
	"github.com/TwigBush/keyguard/internal/trace"
)

type LogOpts struct {
	Logger        *slog.Logger
	SkipPaths     []string
	RedactHeaders []string // on top of Authorization and the api key headers
	RedactQuery   []string
}

const redacted = "***redacted***"

func (o LogOpts) skip(p string) bool {
	for _, s := range o.SkipPaths {
		if p == s {
			return true
		}
	}
	return false
}

func (o LogOpts) sensitiveHeader(k string) bool {
	lk := strings.ToLower(k)
	if lk == "authorization" || lk == "api-key" || strings.HasPrefix(lk, "x-api-key") {
		return true
	}
	for _, h := range o.RedactHeaders {
		if strings.EqualFold(h, k) {
			return true
		}
	}
	return false
}

// query renders the raw query with sensitive values masked.
func (o LogOpts) query(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return ""
	}
	q := r.URL.Query()
	for _, name := range o.RedactQuery {
		if q.Has(name) {
			q.Set(name, redacted)
		}
	}
	return q.Encode()
}

func Logger(opts LogOpts) func(http.Handler) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	log := opts.Logger

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || opts.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := httpx.NewRecorder(w)
			next.ServeHTTP(rec, r)
			dur := time.Since(start)
			if rec.Status == 0 {
				rec.Status = http.StatusOK
			}

			log.Info("req",
				"trace", trace.From(r.Context()),
				"m", r.Method,
				"path", r.URL.Path,
				"status", rec.Status,
				"ms", dur.Milliseconds(),
				"bytes", rec.Bytes,
			)

			if rec.Status >= 400 {
				h := map[string]string{}
				for k, vv := range r.Header {
					if len(vv) == 0 {
						continue
					}
					v := vv[0]
					if opts.sensitiveHeader(k) {
						v = redacted
					}
					h[k] = v
				}
				log.Error("req_detail",
					"trace", trace.From(r.Context()),
					"m", r.Method, "path", r.URL.Path,
					"query", opts.query(r),
					"status", rec.Status, "ms", dur.Milliseconds(),
					"headers", h,
				)
			}
		})
	}
}
