package route

import (
	"context"
	"net/http"
)

type tagsKey struct{}

// Tags is the read-only tag set a route was declared with.
type Tags struct {
	set map[string]struct{}
}

func NewTags(tags ...string) Tags {
	if len(tags) == 0 {
		return Tags{}
	}
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		m[t] = struct{}{}
	}
	return Tags{set: m}
}

func (t Tags) Has(tag string) bool {
	_, ok := t.set[tag]
	return ok
}

func (t Tags) Len() int { return len(t.set) }

func WithTags(ctx context.Context, t Tags) context.Context {
	return context.WithValue(ctx, tagsKey{}, t)
}

// TagsFrom returns the tags attached to the request context, or an empty set.
func TagsFrom(ctx context.Context) Tags {
	t, _ := ctx.Value(tagsKey{}).(Tags)
	return t
}

// Tagged attaches route metadata to every request that reaches the wrapped
// handler. Install it before any middleware that inspects tags.
func Tagged(tags ...string) func(http.Handler) http.Handler {
	t := NewTags(tags...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithTags(r.Context(), t)))
		})
	}
}
