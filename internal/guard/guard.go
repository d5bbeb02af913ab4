// Package guard restricts access to tagged routes unless the caller presents
// one of a configured set of API keys.
//
// A Guard is built once at start-up and is immutable afterwards. Evaluate is a
// pure function of the guard and the request, so a single Guard may be shared
// by any number of concurrent requests.
package guard

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/TwigBush/keyguard/internal/httpx"
	"github.com/TwigBush/keyguard/internal/route"
)

const (
	// UnauthorizedMessage is the stable message clients can match on.
	UnauthorizedMessage = "The correct API Key was not provided by the client"
	ReasonUnauthorized  = "unauthorized"

	// DefaultCredentialName is both the header and the query parameter consulted
	// by the default extractor.
	DefaultCredentialName = "api-key"
	DefaultProtectedTag   = "api"
)

// Verdict is the outcome of evaluating a request. The zero value allows.
type Verdict struct {
	Reason  string
	Message string
}

func (v Verdict) Allowed() bool { return v.Reason == "" }

var allow = Verdict{}

func deny() Verdict {
	return Verdict{Reason: ReasonUnauthorized, Message: UnauthorizedMessage}
}

// CredentialExtractor returns the caller supplied credential, if any.
type CredentialExtractor func(r *http.Request) (string, bool)

// Applicability reports whether the guard must run for a request to a route
// declared with tags.
type Applicability func(r *http.Request, tags route.Tags) bool

type Guard struct {
	secrets []string
	source  SecretSource
	extract CredentialExtractor
	applies Applicability
}

// New resolves the configuration once. Without WithSecrets the secret set is
// read from the environment under DefaultEnvPrefix.
func New(opts ...Option) *Guard {
	cfg := &config{
		envPrefix: DefaultEnvPrefix,
		credName:  DefaultCredentialName,
		tag:       DefaultProtectedTag,
	}
	for _, o := range opts {
		o(cfg)
	}

	g := &Guard{
		extract: cfg.extract,
		applies: cfg.applies,
	}
	if cfg.secretsSet {
		g.secrets = append([]string(nil), cfg.secrets...)
		g.source = SourceExplicit
	} else {
		g.secrets = LoadSecrets(cfg.envPrefix, cfg.lookup)
		g.source = SourceEnvironment
	}
	if g.extract == nil {
		g.extract = HeaderOrQuery(cfg.credName)
	}
	if g.applies == nil {
		g.applies = TaggedWith(cfg.tag)
	}
	return g
}

// Secrets returns a copy of the resolved secret set.
func (g *Guard) Secrets() []string { return append([]string(nil), g.secrets...) }

// Source reports where the secret set came from.
func (g *Guard) Source() SecretSource { return g.source }

// Evaluate decides whether r may proceed to a route declared with tags.
func (g *Guard) Evaluate(r *http.Request, tags route.Tags) Verdict {
	if !g.applies(r, tags) {
		return allow
	}

	if len(g.secrets) == 0 && strings.EqualFold(httpx.Hostname(r), "localhost") {
		return allow
	}

	key, ok := g.extract(r)
	if ok && g.member(key) {
		return allow
	}
	return deny()
}

func (g *Guard) member(key string) bool {
	found := false
	for _, s := range g.secrets {
		if subtle.ConstantTimeCompare([]byte(s), []byte(key)) == 1 {
			found = true
		}
	}
	return found
}

// HeaderOrQuery reads the named header, falling back to the query parameter
// of the same name. Empty values count as absent.
func HeaderOrQuery(name string) CredentialExtractor {
	return func(r *http.Request) (string, bool) {
		if v := r.Header.Get(name); v != "" {
			return v, true
		}
		if r.URL == nil {
			return "", false
		}
		if v := r.URL.Query().Get(name); v != "" {
			return v, true
		}
		return "", false
	}
}

// TaggedWith protects routes declared with tag.
func TaggedWith(tag string) Applicability {
	return func(_ *http.Request, tags route.Tags) bool {
		return tags.Has(tag)
	}
}
