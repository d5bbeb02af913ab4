package guard

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/TwigBush/keyguard/internal/route"
)

var api = route.NewTags("api")

func newReq(host, target string, header map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.Host = host
	for k, v := range header {
		r.Header.Set(k, v)
	}
	return r
}

func noEnv(string) (string, bool) { return "", false }

func TestEvaluate(t *testing.T) {
	configured := New(WithSecrets("secret", "secret2"))
	unset := New(WithEnvironment(DefaultEnvPrefix, noEnv))

	cases := []struct {
		name   string
		g      *Guard
		host   string
		target string
		header map[string]string
		tags   route.Tags
		allow  bool
	}{
		{"untagged route remote no key", configured, "example.com", "/ping/123", nil, route.Tags{}, true},
		{"untagged route wrong key", configured, "example.com", "/ping/123", map[string]string{"api-key": "wrong"}, route.NewTags("public"), true},
		{"localhost header secret", configured, "localhost", "/protected/name", map[string]string{"api-key": "secret"}, api, true},
		{"localhost query secret2", configured, "localhost", "/protected/name?api-key=secret2", nil, api, true},
		{"localhost wrong key", configured, "localhost", "/protected/name", map[string]string{"api-key": "wrong"}, api, false},
		{"localhost no key with secrets", configured, "localhost:8085", "/protected/name", nil, api, false},
		{"remote header secret", configured, "example.com", "/protected/name", map[string]string{"api-key": "secret"}, api, true},
		{"remote query wrong", configured, "example.com", "/protected/name?api-key=wrong", nil, api, false},
		{"remote no key", configured, "example.com", "/protected/name", nil, api, false},
		{"unset localhost", unset, "localhost", "/protected/name", nil, api, true},
		{"unset LOCALHOST any case", unset, "LocalHost:3000", "/protected/name", nil, api, true},
		{"unset remote", unset, "example.com", "/protected/name", nil, api, false},
		{"unset remote with key", unset, "example.com", "/protected/name", map[string]string{"api-key": "secret"}, api, false},
		{"key is case-sensitive", configured, "example.com", "/protected/name", map[string]string{"api-key": "SECRET"}, api, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := tc.g.Evaluate(newReq(tc.host, tc.target, tc.header), tc.tags)
			if v.Allowed() != tc.allow {
				t.Fatalf("Allowed = %v, want %v (verdict %+v)", v.Allowed(), tc.allow, v)
			}
			if !tc.allow {
				if v.Reason != ReasonUnauthorized || v.Message != UnauthorizedMessage {
					t.Fatalf("unexpected deny verdict %+v", v)
				}
			}
		})
	}
}

func TestHeaderTakesPrecedenceOverQuery(t *testing.T) {
	g := New(WithSecrets("secret"))

	r := newReq("example.com", "/protected/name?api-key=secret", map[string]string{"api-key": "wrong"})
	if g.Evaluate(r, api).Allowed() {
		t.Fatalf("header value must win over query value")
	}

	r = newReq("example.com", "/protected/name?api-key=wrong", map[string]string{"api-key": "secret"})
	if !g.Evaluate(r, api).Allowed() {
		t.Fatalf("valid header must be accepted regardless of query")
	}
}

func TestEmptyHeaderFallsBackToQuery(t *testing.T) {
	ex := HeaderOrQuery(DefaultCredentialName)
	r := newReq("example.com", "/x?api-key=q", nil)
	r.Header.Set("api-key", "")

	got, ok := ex(r)
	if !ok || got != "q" {
		t.Fatalf("extract = %q, %v; want q, true", got, ok)
	}

	if _, ok := ex(newReq("example.com", "/x", nil)); ok {
		t.Fatalf("expected no credential")
	}
}

func TestExplicitEmptySecretsSkipsEnvironment(t *testing.T) {
	lookup := func(k string) (string, bool) {
		t.Fatalf("environment consulted for %s", k)
		return "", false
	}
	g := New(WithSecrets(), WithEnvironment("API_KEY", lookup))

	if g.Source() != SourceExplicit {
		t.Fatalf("Source = %q, want explicit", g.Source())
	}
	if n := len(g.Secrets()); n != 0 {
		t.Fatalf("expected empty secret set, got %d", n)
	}
	if !g.Evaluate(newReq("localhost", "/p", nil), api).Allowed() {
		t.Fatalf("empty explicit set must still exempt localhost")
	}
}

func TestEnvironmentSecrets(t *testing.T) {
	t.Setenv("API_KEY_1", "secret")
	t.Setenv("API_KEY_2", "secret2")

	g := New()
	if g.Source() != SourceEnvironment {
		t.Fatalf("Source = %q, want environment", g.Source())
	}

	r := newReq("example.com", "/protected/name?api-key=secret2", nil)
	if !g.Evaluate(r, api).Allowed() {
		t.Fatalf("expected secret2 from environment to be accepted")
	}
}

func TestCustomStrategies(t *testing.T) {
	g := New(
		WithSecrets("tok"),
		WithCredentialExtractor(func(r *http.Request) (string, bool) {
			c, err := r.Cookie("key")
			if err != nil {
				return "", false
			}
			return c.Value, true
		}),
		WithApplicability(func(r *http.Request, _ route.Tags) bool {
			return r.Method != http.MethodGet
		}),
	)

	get := newReq("example.com", "/anything", nil)
	if !g.Evaluate(get, api).Allowed() {
		t.Fatalf("GET is not protected by the custom predicate")
	}

	post := httptest.NewRequest(http.MethodPost, "/anything", nil)
	post.Host = "example.com"
	post.Header.Set("api-key", "tok")
	if g.Evaluate(post, route.Tags{}).Allowed() {
		t.Fatalf("custom extractor ignores the api-key header")
	}

	post.AddCookie(&http.Cookie{Name: "key", Value: "tok"})
	if !g.Evaluate(post, route.Tags{}).Allowed() {
		t.Fatalf("expected cookie credential to be accepted")
	}
}

func TestCredentialNameAndTag(t *testing.T) {
	g := New(WithSecrets("s"), WithCredentialName("X-Api-Key"), WithProtectedTag("private"))

	r := newReq("example.com", "/p", map[string]string{"X-Api-Key": "s"})
	if !g.Evaluate(r, route.NewTags("private")).Allowed() {
		t.Fatalf("expected custom header to be accepted")
	}
	if !g.Evaluate(newReq("example.com", "/p", nil), api).Allowed() {
		t.Fatalf("api tag is not protected when tag is overridden")
	}
	if g.Evaluate(newReq("example.com", "/p", nil), route.NewTags("private")).Allowed() {
		t.Fatalf("expected deny without credential")
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	g := New(WithSecrets("secret"))
	r := newReq("example.com", "/p?api-key=secret", nil)
	first := g.Evaluate(r, api)
	for i := 0; i < 10; i++ {
		if g.Evaluate(r, api) != first {
			t.Fatalf("verdict changed on evaluation %d", i)
		}
	}
}

func TestSecretsIsACopy(t *testing.T) {
	in := []string{"a"}
	g := New(WithSecrets(in...))
	in[0] = "mutated"
	out := g.Secrets()
	out[0] = "also mutated"

	if !g.Evaluate(newReq("example.com", "/p?api-key=a", nil), api).Allowed() {
		t.Fatalf("guard secret set must not alias caller slices")
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	g := New(WithSecrets("secret", "secret2"))

	type call struct {
		host, target string
		tags         route.Tags
		allow        bool
	}
	calls := []call{
		{"example.com", "/p?api-key=secret", api, true},
		{"example.com", "/p?api-key=secret2", api, true},
		{"example.com", "/p?api-key=wrong", api, false},
		{"localhost", "/p", api, false},
		{"example.com", "/ping", route.Tags{}, true},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64*len(calls))
	for i := 0; i < 64; i++ {
		for _, c := range calls {
			wg.Add(1)
			go func(c call) {
				defer wg.Done()
				if got := g.Evaluate(newReq(c.host, c.target, nil), c.tags).Allowed(); got != c.allow {
					errs <- fmt.Errorf("%s %s: Allowed = %v, want %v", c.host, c.target, got, c.allow)
				}
			}(c)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
