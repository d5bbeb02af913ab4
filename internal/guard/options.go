package guard

type config struct {
	secrets    []string
	secretsSet bool
	envPrefix  string
	lookup     LookupFunc
	credName   string
	tag        string
	extract    CredentialExtractor
	applies    Applicability
}

type Option func(*config)

// WithSecrets sets the secret set verbatim. An empty list is still explicit:
// the environment is not consulted.
func WithSecrets(secrets ...string) Option {
	return func(c *config) {
		c.secrets = secrets
		c.secretsSet = true
	}
}

// WithEnvironment sets where secrets are looked up when WithSecrets is absent.
func WithEnvironment(prefix string, lookup LookupFunc) Option {
	return func(c *config) {
		c.envPrefix = prefix
		c.lookup = lookup
	}
}

func WithCredentialName(name string) Option { return func(c *config) { c.credName = name } }
func WithProtectedTag(tag string) Option    { return func(c *config) { c.tag = tag } }

func WithCredentialExtractor(fn CredentialExtractor) Option {
	return func(c *config) { c.extract = fn }
}

func WithApplicability(fn Applicability) Option {
	return func(c *config) { c.applies = fn }
}
